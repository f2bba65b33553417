package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	apperrors "courtside/pkg/errors"
)

// CoachProfile is the catalog's view of a coach: the hourly rate used for the
// coach leg of the split payment, and the venue the coach operates from.
type CoachProfile struct {
	CoachID     string `json:"coach_id"`
	HourlyRate  int64  `json:"hourly_rate"`
	ServiceMode string `json:"service_mode"`
	HomeVenueID string `json:"home_venue_id"`
}

// CatalogClient consumes the surrounding system's venue/coach catalog. The
// engine treats it as a read-only collaborator: rates in the smallest
// currency unit, no caching, no writes.
type CatalogClient struct {
	httpClient *HttpClient
}

func NewCatalogClient(baseURL string) *CatalogClient {
	return &CatalogClient{
		httpClient: NewHttpClient(baseURL),
	}
}

// VenueRate returns the venue's hourly rate for the given sport. A catalog
// 404 means the venue does not exist or does not offer the sport; both are
// an InvalidInput from the booking engine's point of view.
func (c *CatalogClient) VenueRate(ctx context.Context, venueID, sport string) (int64, error) {
	path := fmt.Sprintf("/api/v1/venues/%s/rate?sport=%s", url.PathEscape(venueID), url.QueryEscape(sport))
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return 0, apperrors.Internal("Failed to query venue catalog", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return 0, apperrors.InvalidInput(fmt.Sprintf("venue %s does not offer %s", venueID, sport))
	default:
		return 0, apperrors.Internal(fmt.Sprintf("venue catalog returned status %d", resp.StatusCode), nil)
	}

	var wrapper struct {
		Data struct {
			HourlyRate int64 `json:"hourly_rate"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return 0, apperrors.Internal("Failed to decode venue rate response", err)
	}
	return wrapper.Data.HourlyRate, nil
}

func (c *CatalogClient) CoachProfile(ctx context.Context, coachID string) (*CoachProfile, error) {
	path := "/api/v1/coaches/" + url.PathEscape(coachID)
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, apperrors.Internal("Failed to query coach catalog", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, apperrors.NotFoundWithID("Coach", coachID)
	default:
		return nil, apperrors.Internal(fmt.Sprintf("coach catalog returned status %d", resp.StatusCode), nil)
	}

	var wrapper struct {
		Data CoachProfile `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, apperrors.Internal("Failed to decode coach profile response", err)
	}
	return &wrapper.Data, nil
}
