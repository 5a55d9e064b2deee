package types

type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusComplete  DonationStatus = "complete"
	DonationStatusRenewal   DonationStatus = "renewal"
	DonationStatusFailed    DonationStatus = "failed"
	DonationStatusCancelled DonationStatus = "cancelled"
)

type DonationType string

const (
	// DonationTypeInitial is the first payment of a subscription, created at
	// purchase submission time and completed by the gateway confirmation.
	DonationTypeInitial DonationType = "initial"
	// DonationTypeRenewal is a recurring payment, created only from confirmed
	// webhook events or the sync engine.
	DonationTypeRenewal DonationType = "renewal"
)
