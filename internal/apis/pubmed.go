package apis

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"glucofeed/internal/analysis"
	"glucofeed/internal/httpx"
	"glucofeed/internal/model"
)

// PubMed uses the two-step E-utilities flow: esearch returns article
// ids, efetch returns XML abstracts for those ids.
type PubMed struct {
	baseURL string
	client  *http.Client
	term    string
	limit   int
}

func NewPubMed(baseURL string, client *http.Client, limit int) *PubMed {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	}
	if client == nil {
		client = httpx.Client()
	}
	if limit <= 0 {
		limit = 10
	}
	return &PubMed{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		term:    "diabetes technology continuous glucose monitoring",
		limit:   limit,
	}
}

func (p *PubMed) Name() string { return "pubmed" }

type esearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// pubmedArticleSet mirrors the subset of the efetch XML we use.
type pubmedArticleSet struct {
	XMLName  xml.Name `xml:"PubmedArticleSet"`
	Articles []struct {
		MedlineCitation struct {
			PMID    string `xml:"PMID"`
			Article struct {
				Title    string `xml:"ArticleTitle"`
				Abstract struct {
					Text []string `xml:"AbstractText"`
				} `xml:"Abstract"`
				AuthorList struct {
					Authors []struct {
						LastName string `xml:"LastName"`
						ForeName string `xml:"ForeName"`
					} `xml:"Author"`
				} `xml:"AuthorList"`
				ArticleDate struct {
					Year  string `xml:"Year"`
					Month string `xml:"Month"`
					Day   string `xml:"Day"`
				} `xml:"ArticleDate"`
			} `xml:"Article"`
		} `xml:"MedlineCitation"`
	} `xml:"PubmedArticle"`
}

func (p *PubMed) Fetch(ctx context.Context) ([]model.ContentItem, error) {
	sq := url.Values{
		"db":      {"pubmed"},
		"term":    {p.term},
		"retmax":  {fmt.Sprintf("%d", p.limit)},
		"retmode": {"json"},
		"sort":    {"pub_date"},
	}
	var search esearchResponse
	if err := httpx.GetJSON(ctx, p.client, p.baseURL+"/esearch.fcgi?"+sq.Encode(), &search); err != nil {
		return nil, err
	}
	ids := search.ESearchResult.IDList
	if len(ids) == 0 {
		return nil, nil
	}

	fq := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
	}
	resp, err := httpx.Get(ctx, p.client, p.baseURL+"/efetch.fcgi?"+fq.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var set pubmedArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("decode pubmed xml: %w", err)
	}

	items := make([]model.ContentItem, 0, len(set.Articles))
	for _, a := range set.Articles {
		if len(items) >= p.limit {
			break
		}
		cit := a.MedlineCitation
		if strings.TrimSpace(cit.Article.Title) == "" {
			continue
		}

		author := "anonymous"
		if len(cit.Article.AuthorList.Authors) > 0 {
			first := cit.Article.AuthorList.Authors[0]
			author = strings.TrimSpace(first.ForeName + " " + first.LastName)
		}

		published := time.Now()
		d := cit.Article.ArticleDate
		if d.Year != "" {
			raw := fmt.Sprintf("%s-%s-%s", d.Year, pad2(d.Month), pad2(d.Day))
			if t, err := time.Parse("2006-01-02", raw); err == nil {
				published = t
			}
		}

		abstract := strings.Join(cit.Article.Abstract.Text, " ")
		text := cit.Article.Title + " " + abstract
		items = append(items, model.ContentItem{
			ID:        cit.PMID,
			Title:     strings.TrimSpace(cit.Article.Title),
			Content:   abstract,
			Author:    author,
			Published: published,
			Source:    p.Name(),
			Category:  model.CategoryResearch,
			URL:       "https://pubmed.ncbi.nlm.nih.gov/" + cit.PMID + "/",
			Keywords:  analysis.Keywords(text),
			Sentiment: analysis.DetectSentiment(text),
		})
	}
	return items, nil
}

func pad2(s string) string {
	if s == "" {
		return "01"
	}
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
