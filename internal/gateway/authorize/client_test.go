package authorize

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fatflowers/pledger/internal/gateway"
	"github.com/stretchr/testify/require"
)

func testClient(srv *httptest.Server) *Client {
	return &Client{
		apiLoginID:     "login",
		transactionKey: "key",
		endpoint:       srv.URL,
		httpClient:     srv.Client(),
	}
}

func TestCheckMessages_Ok(t *testing.T) {
	require.NoError(t, checkMessages(messagesType{ResultCode: "Ok"}))
}

func TestCheckMessages_ErrorMapsToGatewayError(t *testing.T) {
	err := checkMessages(messagesType{
		ResultCode: "Error",
		Message:    []messageType{{Code: "E00027", Text: "The transaction was unsuccessful."}},
	})
	var gwErr *gateway.GatewayError
	require.ErrorAs(t, err, &gwErr)
	require.Equal(t, "E00027", gwErr.Code)
}

func TestCheckMessages_ReportingDisabled(t *testing.T) {
	err := checkMessages(messagesType{
		ResultCode: "Error",
		Message:    []messageType{{Code: "E00011", Text: "Access denied."}},
	})
	require.ErrorIs(t, err, gateway.ErrReportingDisabled)
}

func TestCheckMessages_NoMessage(t *testing.T) {
	err := checkMessages(messagesType{ResultCode: "Error"})
	var gwErr *gateway.GatewayError
	require.ErrorAs(t, err, &gwErr)
	require.Equal(t, "unknown", gwErr.Code)
}

func TestDo_TrimsBOM(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("\xef\xbb\xbf<?xml version=\"1.0\"?>" +
			"<ARBGetSubscriptionResponse>" +
			"<messages><resultCode>Ok</resultCode></messages>" +
			"<subscription><status>active</status></subscription>" +
			"</ARBGetSubscriptionResponse>"))
	}))
	defer srv.Close()

	remote, err := testClient(srv).getSubscription(context.Background(), "123")
	require.NoError(t, err)
	require.Equal(t, "active", remote.Status)
}

func TestDo_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // force connection refused

	_, err := testClient(srv).getSubscription(context.Background(), "123")
	require.ErrorIs(t, err, gateway.ErrUnresponsiveGateway)
}

func TestDo_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not xml at all"))
	}))
	defer srv.Close()

	_, err := testClient(srv).getSubscription(context.Background(), "123")
	var gwErr *gateway.GatewayError
	require.ErrorAs(t, err, &gwErr)
	require.Equal(t, "malformed_response", gwErr.Code)
}
