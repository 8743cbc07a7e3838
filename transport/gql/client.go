package gql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/wallet-bridge/envelope"
	"github.com/wippyai/wallet-bridge/wallet"
)

const (
	defaultQueryTimeout = 30 * time.Second
	maxResponseBytes    = 4 << 20
)

// Client is a wallet.Transport backed by a blockchain node's GraphQL
// endpoint. Queries go over HTTP POST; live account feeds go over a
// websocket to the same host (see Watch).
type Client struct {
	endpoint string
	http     *http.Client
	log      *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// Dial builds a client for a GraphQL endpoint. No connection is opened
// until the first query; the endpoint is only validated syntactically.
func Dial(ctx context.Context, endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("gql: empty endpoint")
	}
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: defaultQueryTimeout},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the configured GraphQL URL.
func (c *Client) Endpoint() string { return c.endpoint }

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors,omitempty"`
}

// query runs one GraphQL operation and decodes the data field into out.
func (c *Client) query(ctx context.Context, q string, vars map[string]any, out any) error {
	body, err := json.Marshal(gqlRequest{Query: q, Variables: vars})
	if err != nil {
		return fmt.Errorf("gql: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("gql: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gql: post %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("gql: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gql: endpoint returned %s", resp.Status)
	}

	var parsed gqlResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("gql: decode response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return fmt.Errorf("gql: %s", parsed.Errors[0].Message)
	}
	if out != nil {
		if err := json.Unmarshal(parsed.Data, out); err != nil {
			return fmt.Errorf("gql: decode data: %w", err)
		}
	}
	return nil
}

const accountStateQuery = `query($addr: String!) {
  accounts(filter: {id: {eq: $addr}}, limit: 1) {
    balance(format: DEC)
    acc_type
    last_trans_lt(format: DEC)
  }
}`

type accountRow struct {
	Balance     *envelope.BigInt `json:"balance"`
	AccType     int              `json:"acc_type"`
	LastTransLT envelope.Uint64  `json:"last_trans_lt"`
}

// AccountState fetches the current state of an address. Addresses unknown
// to the node read as empty undeployed accounts, matching how the chain
// treats them.
func (c *Client) AccountState(ctx context.Context, address string) (*wallet.AccountState, error) {
	var data struct {
		Accounts []accountRow `json:"accounts"`
	}
	if err := c.query(ctx, accountStateQuery, map[string]any{"addr": address}, &data); err != nil {
		return nil, err
	}
	if len(data.Accounts) == 0 {
		return &wallet.AccountState{Balance: envelope.NewBigInt(0)}, nil
	}

	row := data.Accounts[0]
	st := &wallet.AccountState{
		Balance:           row.Balance,
		IsDeployed:        row.AccType == 1,
		LastTransactionLT: row.LastTransLT,
	}
	if st.Balance == nil {
		st.Balance = envelope.NewBigInt(0)
	}
	return st, nil
}

const postRequestMutation = `mutation($records: [Request]!) {
  postRequests(requests: $records)
}`

// SendMessage submits a signed external message to the node.
func (c *Client) SendMessage(ctx context.Context, msg wallet.SignedMessage) (*wallet.PendingTransaction, error) {
	if msg.Dest == "" {
		return nil, fmt.Errorf("gql: message has no destination")
	}

	hash := messageHash(msg)
	record := map[string]any{
		"id":   hash,
		"body": msg.Body,
	}
	if err := c.query(ctx, postRequestMutation, map[string]any{"records": []any{record}}, nil); err != nil {
		return nil, err
	}

	c.log.Debug("message posted",
		zap.String("dest", msg.Dest),
		zap.String("hash", hash))
	return &wallet.PendingTransaction{
		MessageHash: hash,
		ExpireAt:    msg.ExpireAt,
	}, nil
}

// Close releases the client. HTTP connections are pooled by the transport
// and reclaimed there; Close only drops idle ones.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
