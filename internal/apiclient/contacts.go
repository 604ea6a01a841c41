package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"contactbook/internal/model"
)

const contactRoute = "/contacts/:id"

func contactPath(id string) string {
	return "/contacts/" + url.PathEscape(id)
}

func (c *Client) ListContacts(ctx context.Context) (model.ContactsResponse, error) {
	var resp model.ContactsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/contacts", "/contacts", nil, &resp); err != nil {
		return model.ContactsResponse{}, err
	}
	return resp, nil
}

func (c *Client) GetContact(ctx context.Context, id string) (model.Contact, error) {
	var resp model.ContactResponse
	if err := c.doJSON(ctx, http.MethodGet, contactRoute, contactPath(id), nil, &resp); err != nil {
		return model.Contact{}, err
	}
	return resp.Data, nil
}

func (c *Client) CreateContact(ctx context.Context, req model.CreateContactRequest) (model.Contact, error) {
	var resp model.ContactResponse
	if err := c.doJSON(ctx, http.MethodPost, "/contacts", "/contacts", req, &resp); err != nil {
		return model.Contact{}, err
	}
	return resp.Data, nil
}

func (c *Client) UpdateContact(ctx context.Context, id string, req model.UpdateContactRequest) (model.Contact, error) {
	var resp model.ContactResponse
	if err := c.doJSON(ctx, http.MethodPut, contactRoute, contactPath(id), req, &resp); err != nil {
		return model.Contact{}, err
	}
	return resp.Data, nil
}

// DeleteContact accepts any 2xx answer; the body is ignored.
func (c *Client) DeleteContact(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, contactRoute, contactPath(id), nil, nil)
}
