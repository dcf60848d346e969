package client

import (
	"context"
	"net/url"
	"strconv"
)

// PostService handles post submission API calls
type PostService struct {
	client *Client
}

// Create submits a post. A 403 means the account's allowance is spent.
func (s *PostService) Create(ctx context.Context, req CreatePostRequest) (*PostResult, error) {
	var result PostResult
	if err := s.client.doRequest(ctx, "POST", "/api/v1/posts", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// List retrieves the account's post history
func (s *PostService) List(ctx context.Context, opts *ListOptions) (*PostHistory, error) {
	path := "/api/v1/posts"
	if opts != nil {
		query := url.Values{}
		if opts.Limit > 0 {
			query.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Offset > 0 {
			query.Set("offset", strconv.Itoa(opts.Offset))
		}
		if len(query) > 0 {
			path += "?" + query.Encode()
		}
	}

	var history PostHistory
	if err := s.client.doRequest(ctx, "GET", path, nil, &history); err != nil {
		return nil, err
	}
	return &history, nil
}
