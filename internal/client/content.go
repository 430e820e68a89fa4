package client

import (
	"assignmentgateway/internal/domain"
	"assignmentgateway/internal/utils"
	"context"
	"net/http"
	"net/url"
	"time"
)

const (
	maxRetries = 3
	retryDelay = 100 * time.Millisecond
)

type courseList []*domain.Course

func (l courseList) Validate() error {
	for _, c := range l {
		if c == nil {
			return errNullItem
		}
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type deckList []*domain.Deck

func (l deckList) Validate() error {
	for _, d := range l {
		if d == nil {
			return errNullItem
		}
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ContentClient reads the course and deck catalog. Reads are retried on
// transport failures behind a circuit breaker.
type ContentClient struct {
	c  *Client
	cb *utils.CircuitBreaker
}

func NewContentClient(c *Client) *ContentClient {
	return &ContentClient{c: c, cb: utils.NewCircuitBreaker(5, 30*time.Second)}
}

func (cc *ContentClient) ListCourses(ctx context.Context) ([]*domain.Course, error) {
	resp, err := utils.RetryWithCircuitBreaker(ctx, cc.cb, maxRetries, retryDelay, func() (courseList, error) {
		var resp courseList
		err := cc.c.do(ctx, "list courses", http.MethodGet, "/api/content/courses", nil, nil, &resp)
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (cc *ContentClient) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	return utils.RetryWithCircuitBreaker(ctx, cc.cb, maxRetries, retryDelay, func() (*domain.Course, error) {
		var resp domain.Course
		if err := cc.c.do(ctx, "get course", http.MethodGet, "/api/content/courses/"+url.PathEscape(id), nil, nil, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
}

func (cc *ContentClient) ListDecks(ctx context.Context) ([]*domain.Deck, error) {
	resp, err := utils.RetryWithCircuitBreaker(ctx, cc.cb, maxRetries, retryDelay, func() (deckList, error) {
		var resp deckList
		err := cc.c.do(ctx, "list decks", http.MethodGet, "/api/content/decks", nil, nil, &resp)
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (cc *ContentClient) GetDeck(ctx context.Context, id string) (*domain.Deck, error) {
	return utils.RetryWithCircuitBreaker(ctx, cc.cb, maxRetries, retryDelay, func() (*domain.Deck, error) {
		var resp domain.Deck
		if err := cc.c.do(ctx, "get deck", http.MethodGet, "/api/content/decks/"+url.PathEscape(id), nil, nil, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
}
