package apis

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"glucofeed/internal/analysis"
	"glucofeed/internal/httpx"
	"glucofeed/internal/model"
)

// ClinicalTrials queries the ClinicalTrials.gov v2 studies API.
type ClinicalTrials struct {
	baseURL string
	client  *http.Client
	term    string
	limit   int
}

func NewClinicalTrials(baseURL string, client *http.Client, limit int) *ClinicalTrials {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://clinicaltrials.gov/api/v2"
	}
	if client == nil {
		client = httpx.Client()
	}
	if limit <= 0 {
		limit = 10
	}
	return &ClinicalTrials{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		term:    "diabetes",
		limit:   limit,
	}
}

func (c *ClinicalTrials) Name() string { return "clinicaltrials" }

type ctResponse struct {
	Studies []struct {
		ProtocolSection struct {
			IdentificationModule struct {
				NCTID      string `json:"nctId"`
				BriefTitle string `json:"briefTitle"`
			} `json:"identificationModule"`
			DescriptionModule struct {
				BriefSummary string `json:"briefSummary"`
			} `json:"descriptionModule"`
			StatusModule struct {
				StartDateStruct struct {
					Date string `json:"date"` // YYYY-MM or YYYY-MM-DD
				} `json:"startDateStruct"`
			} `json:"statusModule"`
			SponsorCollaboratorsModule struct {
				LeadSponsor struct {
					Name string `json:"name"`
				} `json:"leadSponsor"`
			} `json:"sponsorCollaboratorsModule"`
		} `json:"protocolSection"`
	} `json:"studies"`
}

func (c *ClinicalTrials) Fetch(ctx context.Context) ([]model.ContentItem, error) {
	q := url.Values{
		"query.term": {c.term},
		"pageSize":   {fmt.Sprintf("%d", c.limit)},
	}
	var resp ctResponse
	if err := httpx.GetJSON(ctx, c.client, c.baseURL+"/studies?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	items := make([]model.ContentItem, 0, len(resp.Studies))
	for _, s := range resp.Studies {
		if len(items) >= c.limit {
			break
		}
		ps := s.ProtocolSection
		if strings.TrimSpace(ps.IdentificationModule.BriefTitle) == "" {
			continue
		}

		published := time.Now()
		if d := ps.StatusModule.StartDateStruct.Date; d != "" {
			for _, layout := range []string{"2006-01-02", "2006-01"} {
				if t, err := time.Parse(layout, d); err == nil {
					published = t
					break
				}
			}
		}

		author := ps.SponsorCollaboratorsModule.LeadSponsor.Name
		if author == "" {
			author = "anonymous"
		}

		text := ps.IdentificationModule.BriefTitle + " " + ps.DescriptionModule.BriefSummary
		items = append(items, model.ContentItem{
			ID:        ps.IdentificationModule.NCTID,
			Title:     strings.TrimSpace(ps.IdentificationModule.BriefTitle),
			Content:   ps.DescriptionModule.BriefSummary,
			Author:    author,
			Published: published,
			Source:    c.Name(),
			Category:  model.CategoryResearch,
			URL:       "https://clinicaltrials.gov/study/" + ps.IdentificationModule.NCTID,
			Keywords:  analysis.Keywords(text),
			Sentiment: analysis.DetectSentiment(text),
		})
	}
	return items, nil
}
