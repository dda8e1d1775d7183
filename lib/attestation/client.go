package attestation

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	logging "github.com/inconshreveable/log15"
	"golang.org/x/sync/errgroup"

	"github.com/tokenvote/tokenvote/lib/common"
	"github.com/tokenvote/tokenvote/lib/errors"
)

var log logging.Logger = logging.New("module", "attestation")

func init() {
	SetLogging(common.DefaultLogLevel, common.DefaultLogHandler)
}

func SetLogging(level logging.Lvl, handler logging.Handler) {
	log.SetHandler(logging.LvlFilterHandler(level, handler))
}

// Client talks to the attestation service that knows which voters
// passed badge verification and what the round's projects are called.
// Requests retry with backoff; a service that stays unreachable
// surfaces as a retryable error, never as a rejection.
type Client struct {
	endpoint string
	client   *common.HTTP2Client
}

func NewClient(endpoint string, timeout time.Duration, retries int) (*Client, error) {
	client, err := common.NewPersistentHTTP2Client(
		timeout,
		timeout,
		false,
		&common.RetrySetting{
			MaxRetries:  retries,
			Concurrency: 1,
			Backoff:     common.ExponentialBackoff,
		},
	)
	if err != nil {
		return nil, err
	}
	return &Client{endpoint: endpoint, client: client}, nil
}

func (c *Client) Close() {
	c.client.Close()
}

type approvalBody struct {
	Approved bool `json:"approved"`
}

// IsApproved checks the voter's badgeholder status.
func (c *Client) IsApproved(voter string) (bool, error) {
	url := fmt.Sprintf("%s/approvals/%s", c.endpoint, voter)
	response, err := c.client.Get(url, nil)
	if err != nil {
		return false, err
	}
	defer response.Body.Close()

	switch {
	case response.StatusCode == http.StatusNotFound:
		return false, nil
	case response.StatusCode != http.StatusOK:
		return false, errors.ErrorApprovalCheckFailed.Clone().SetData("status", response.StatusCode)
	}

	var body approvalBody
	if err := json.NewDecoder(response.Body).Decode(&body); err != nil {
		return false, err
	}
	return body.Approved, nil
}

type projectBody struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

const projectLookupConcurrency = 8

// ProjectNames resolves project ids to display names, fetching
// concurrently. Unknown projects are simply absent from the result;
// results never depend on metadata being complete.
func (c *Client) ProjectNames(ids []string) (map[string]string, error) {
	names := map[string]string{}
	var mutex sync.Mutex

	var g errgroup.Group
	semaphore := make(chan struct{}, projectLookupConcurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			url := fmt.Sprintf("%s/projects/%s", c.endpoint, id)
			response, err := c.client.Get(url, nil)
			if err != nil {
				return err
			}
			defer response.Body.Close()

			if response.StatusCode != http.StatusOK {
				return nil
			}
			var body projectBody
			if err := json.NewDecoder(response.Body).Decode(&body); err != nil {
				return err
			}

			mutex.Lock()
			names[id] = body.Name
			mutex.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return names, nil
}
