package airtable

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"hevruta/hevruta/config"
	"hevruta/hevruta/utils/apperrors"
	httputils "hevruta/hevruta/utils/http"
	"hevruta/hevruta/utils/logging"
)

// Client is a thin wrapper over the Airtable REST API: row CRUD on one
// base plus the field-rename helper from the Metadata API. No retries;
// callers decide what a mirror failure means.
type Client struct {
	baseURL string
	apiKey  string
	baseID  string
	table   string
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.AirtableBaseURL, "/"),
		apiKey:  cfg.AirtableAPIKey,
		baseID:  cfg.AirtableBaseID,
		table:   cfg.AirtableTable,
	}
}

type Record struct {
	ID          string                 `json:"id,omitempty"`
	Fields      map[string]interface{} `json:"fields"`
	CreatedTime string                 `json:"createdTime,omitempty"`
}

func (c *Client) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.apiKey}
}

func (c *Client) tableURL() string {
	return fmt.Sprintf("%s/v0/%s/%s", c.baseURL, c.baseID, url.PathEscape(c.table))
}

// ListRecords fetches rows, optionally filtered with an Airtable formula
// such as {RunID} = 'run_abc'.
func (c *Client) ListRecords(ctx context.Context, filterByFormula string, pageSize int) ([]Record, error) {
	defer logging.LogDuration(ctx, "airtable_list_records")()

	q := url.Values{}
	if filterByFormula != "" {
		q.Set("filterByFormula", filterByFormula)
	}
	if pageSize > 0 {
		q.Set("pageSize", fmt.Sprintf("%d", pageSize))
	}
	u := c.tableURL()
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}

	var resp struct {
		Records []Record `json:"records"`
	}
	if err := httputils.DoJSON(ctx, "GET", u, c.headers(), nil, &resp); err != nil {
		return nil, apperrors.External("airtable list failed", err)
	}
	return resp.Records, nil
}

func (c *Client) CreateRecord(ctx context.Context, fields map[string]interface{}) (*Record, error) {
	defer logging.LogDuration(ctx, "airtable_create_record")()

	var rec Record
	err := httputils.DoJSON(ctx, "POST", c.tableURL(), c.headers(), Record{Fields: fields}, &rec)
	if err != nil {
		return nil, apperrors.External("airtable create failed", err)
	}
	return &rec, nil
}

// UpdateRecord PATCHes only the given fields, leaving the rest of the
// row untouched.
func (c *Client) UpdateRecord(ctx context.Context, recordID string, fields map[string]interface{}) (*Record, error) {
	defer logging.LogDuration(ctx, "airtable_update_record")()

	var rec Record
	err := httputils.DoJSON(ctx, "PATCH", c.tableURL()+"/"+recordID, c.headers(), Record{Fields: fields}, &rec)
	if err != nil {
		return nil, apperrors.External("airtable update failed", err)
	}
	return &rec, nil
}

func (c *Client) DeleteRecord(ctx context.Context, recordID string) error {
	defer logging.LogDuration(ctx, "airtable_delete_record")()

	if err := httputils.DoJSON(ctx, "DELETE", c.tableURL()+"/"+recordID, c.headers(), nil, nil); err != nil {
		return apperrors.External("airtable delete failed", err)
	}
	return nil
}

// RenameField renames a column through the Metadata API. Table and field
// here are ids (tblXXX / fldXXX), not display names.
func (c *Client) RenameField(ctx context.Context, tableID, fieldID, newName string) error {
	defer logging.LogDuration(ctx, "airtable_rename_field")()

	u := fmt.Sprintf("%s/v0/meta/bases/%s/tables/%s/fields/%s", c.baseURL, c.baseID, tableID, fieldID)
	err := httputils.DoJSON(ctx, "PATCH", u, c.headers(), map[string]string{"name": newName}, nil)
	if err != nil {
		return apperrors.External("airtable field rename failed", err)
	}
	return nil
}
