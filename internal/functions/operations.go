package functions

import (
	"context"

	"github.com/pkg/errors"
)

// PaymentSession is a hosted checkout session for a ticket purchase.
type PaymentSession struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// CreatePaymentSession starts a ticket checkout for an event.
func (c *Client) CreatePaymentSession(ctx context.Context, userID, eventID string, quantity int) (PaymentSession, error) {
	var session PaymentSession
	err := c.postJSON(ctx, "/payments/session", map[string]any{
		"user_id":  userID,
		"event_id": eventID,
		"quantity": quantity,
	}, &session)
	if err != nil {
		return PaymentSession{}, err
	}
	if session.CheckoutURL == "" {
		return PaymentSession{}, errors.New("payment session missing checkout url")
	}
	return session, nil
}

// RequestCompanyVerification files a verification request for a company.
func (c *Client) RequestCompanyVerification(ctx context.Context, companyID, contactEmail string) error {
	return c.postJSON(ctx, "/companies/verify", map[string]string{
		"company_id":    companyID,
		"contact_email": contactEmail,
	}, nil)
}

// ReencodeVideo triggers re-encoding of an event video and returns the URL of
// the encoded rendition.
func (c *Client) ReencodeVideo(ctx context.Context, videoURL string) (string, error) {
	var result struct {
		URL string `json:"url"`
	}
	if err := c.postJSON(ctx, "/video/reencode", map[string]string{"url": videoURL}, &result); err != nil {
		return "", err
	}
	if result.URL == "" {
		return "", errors.New("reencode returned no url")
	}
	return result.URL, nil
}

// CleanupAccount asks the cleanup function to remove backend state for an
// account being deleted.
func (c *Client) CleanupAccount(ctx context.Context, accountID string) error {
	return c.postJSON(ctx, "/accounts/cleanup", map[string]string{"account_id": accountID}, nil)
}
