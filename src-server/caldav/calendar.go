package caldav

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"davcal/src-server/ical"
	"davcal/src-server/ical/utils"
)

// A calendar collection on the server
type Calendar struct {
	client      *Client
	url         string
	displayName string
	description string
}

func NewCalendar(client *Client, url, displayName string) (*Calendar, error) {
	if strings.TrimSpace(url) == "" {
		return nil, utils.InvalidArgument("calendar url is required", nil)
	}
	return &Calendar{client: client, url: url, displayName: displayName}, nil
}

// #region Getters

func (c *Calendar) URL() string {
	return c.url
}

func (c *Calendar) DisplayName() string {
	return c.displayName
}

func (c *Calendar) Description() string {
	return c.description
}

// #endregion

// Get the href of an object stored in the calendar
func (c *Calendar) ObjectURL(fileName string) string {
	if strings.HasSuffix(c.url, "/") {
		return c.url + fileName
	}
	return c.url + "/" + fileName
}

// PUT the document as fileName. With an eTag the write only happens when the
// stored object still matches it.
func (c *Calendar) Save(ctx context.Context, doc *ical.Document, fileName, eTag string) (*Response, error) {
	if err := validFileName(fileName); err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Content-Type", "text/calendar; charset=utf-8")
	if eTag != "" {
		header.Set("If-Match", eTag)
	}
	resp, err := c.client.Request(ctx, http.MethodPut, c.ObjectURL(fileName), []byte(doc.Serialize()), header)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return resp, fmt.Errorf("%w: PUT %s returned %d", ErrUnexpectedStatus, fileName, resp.Status)
	}
	return resp, nil
}

// DELETE the object stored as fileName
func (c *Calendar) Delete(ctx context.Context, fileName string) (*Response, error) {
	if err := validFileName(fileName); err != nil {
		return nil, err
	}
	resp, err := c.client.Request(ctx, http.MethodDelete, c.ObjectURL(fileName), nil, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return resp, fmt.Errorf("%w: DELETE %s returned %d", ErrUnexpectedStatus, fileName, resp.Status)
	}
	return resp, nil
}

func validFileName(fileName string) error {
	if strings.TrimSpace(fileName) == "" || strings.ContainsAny(fileName, "/?#") {
		return utils.InvalidArgument("invalid object file name", map[string]any{"fileName": fileName})
	}
	return nil
}
