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

// OpenFDA searches the adverse-event-report API for diabetes drugs.
type OpenFDA struct {
	baseURL string
	client  *http.Client
	limit   int
}

func NewOpenFDA(baseURL string, client *http.Client, limit int) *OpenFDA {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.fda.gov"
	}
	if client == nil {
		client = httpx.Client()
	}
	if limit <= 0 {
		limit = 10
	}
	return &OpenFDA{baseURL: strings.TrimRight(baseURL, "/"), client: client, limit: limit}
}

func (o *OpenFDA) Name() string { return "openfda" }

type fdaResponse struct {
	Results []struct {
		SafetyReportID string `json:"safetyreportid"`
		ReceiveDate    string `json:"receivedate"` // YYYYMMDD
		Patient        struct {
			Reaction []struct {
				ReactionMedDRAPT string `json:"reactionmeddrapt"`
			} `json:"reaction"`
			Drug []struct {
				MedicinalProduct string `json:"medicinalproduct"`
			} `json:"drug"`
		} `json:"patient"`
	} `json:"results"`
}

func (o *OpenFDA) Fetch(ctx context.Context) ([]model.ContentItem, error) {
	q := url.Values{
		"search": {`patient.drug.openfda.pharm_class_epc:"insulin"`},
		"limit":  {fmt.Sprintf("%d", o.limit)},
	}
	var resp fdaResponse
	if err := httpx.GetJSON(ctx, o.client, o.baseURL+"/drug/event.json?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	items := make([]model.ContentItem, 0, len(resp.Results))
	for _, rep := range resp.Results {
		if len(items) >= o.limit {
			break
		}
		drug := "unknown drug"
		if len(rep.Patient.Drug) > 0 && rep.Patient.Drug[0].MedicinalProduct != "" {
			drug = rep.Patient.Drug[0].MedicinalProduct
		}
		var reactions []string
		for _, rx := range rep.Patient.Reaction {
			if rx.ReactionMedDRAPT != "" {
				reactions = append(reactions, rx.ReactionMedDRAPT)
			}
		}
		reaction := "unspecified reaction"
		if len(reactions) > 0 {
			reaction = strings.Join(reactions, ", ")
		}

		published := time.Now()
		if t, err := time.Parse("20060102", rep.ReceiveDate); err == nil {
			published = t
		}

		title := fmt.Sprintf("Adverse event report: %s", drug)
		body := fmt.Sprintf("Reported reactions: %s", reaction)
		text := title + " " + body
		items = append(items, model.ContentItem{
			ID:        rep.SafetyReportID,
			Title:     title,
			Content:   body,
			Author:    "FDA FAERS",
			Published: published,
			Source:    o.Name(),
			Category:  model.CategoryMedical,
			URL:       o.baseURL + "/drug/event.json?search=safetyreportid:" + url.QueryEscape(rep.SafetyReportID),
			Keywords:  analysis.Keywords(text),
			Sentiment: analysis.DetectSentiment(text),
		})
	}
	return items, nil
}
