package webhookpubsub

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"github.com/stocksim-network/stocksim-daemon/internal/core/ports"
	"github.com/stocksim-network/stocksim-daemon/pkg/circuitbreaker"
)

// AllTopics subscribes an endpoint to every published event.
const AllTopics = "*"

const requestTimeout = 10 * time.Second

// webhookService POSTs every published event to the endpoints registered for
// its topic. Endpoints are invoked concurrently behind a shared circuit
// breaker, so a dead receiver cannot pile up blocked requests.
type webhookService struct {
	endpoints  map[string][]string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
}

// NewWebhookPubSubService returns a pubsub that delivers events over HTTP.
// endpoints maps a topic, or AllTopics, to the URLs to notify.
func NewWebhookPubSubService(endpoints map[string][]string) ports.PubSub {
	return &webhookService{
		endpoints:  endpoints,
		httpClient: &http.Client{Timeout: requestTimeout},
		cb:         circuitbreaker.NewCircuitBreaker("webhook"),
	}
}

func (ws *webhookService) Publish(topic string, message string) error {
	urls := append(
		[]string{}, ws.endpoints[topic]...,
	)
	urls = append(urls, ws.endpoints[AllTopics]...)
	if len(urls) == 0 {
		return nil
	}

	eg := &errgroup.Group{}
	for i := range urls {
		url := urls[i]
		eg.Go(func() error { return ws.doRequest(url, message) })
	}
	return eg.Wait()
}

func (ws *webhookService) Close() error {
	ws.httpClient.CloseIdleConnections()
	return nil
}

func (ws *webhookService) doRequest(url, payload string) error {
	_, err := ws.cb.Execute(func() (interface{}, error) {
		status, resp, err := ws.post(url, payload)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("webhook returned status %d: %s", status, resp)
		}
		return nil, nil
	})

	return err
}

// post delivers a JSON payload and returns the receiver's status and body so
// non-200 answers can be surfaced to the breaker.
func (ws *webhookService) post(url, payload string) (int, string, error) {
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(payload))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := ws.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, "", err
	}
	return res.StatusCode, string(body), nil
}
