package remote

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/omarkov/insight-session/internal/core/domain"
	"github.com/omarkov/insight-session/internal/core/ports"
)

type detailPayload struct {
	KeyInsights    []string `json:"keyInsights"`
	DidYouKnow     []string `json:"didYouKnow"`
	Contradictions []string `json:"contradictions"`
	Inspirations   []string `json:"inspirations"`
}

func (p detailPayload) toDetail() domain.Detail {
	return domain.Detail{
		KeyInsights:    p.KeyInsights,
		DidYouKnow:     p.DidYouKnow,
		Contradictions: p.Contradictions,
		Inspirations:   p.Inspirations,
	}
}

func detailPayloadFrom(d *domain.Detail) *detailPayload {
	if d == nil {
		return nil
	}
	return &detailPayload{
		KeyInsights:    d.KeyInsights,
		DidYouKnow:     d.DidYouKnow,
		Contradictions: d.Contradictions,
		Inspirations:   d.Inspirations,
	}
}

func (c *Client) GenerateInsights(ctx context.Context, documentIDs []string, jobDescription string) ([]domain.Card, error) {
	if err := c.genLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"pdfIds":      documentIDs,
		"jobToBeDone": jobDescription,
	}
	var response struct {
		Insights struct {
			Sections []struct {
				ID             any    `json:"id"`
				PDFID          any    `json:"pdfId"`
				Title          string `json:"title"`
				Content        string `json:"content"`
				Page           int    `json:"page"`
				ImportanceRank int    `json:"importanceRank"`
			} `json:"sections"`
		} `json:"insights"`
	}
	if err := c.postJSON(ctx, "/api/insights/enhanced-generate", payload, &response, "generate insights"); err != nil {
		return nil, err
	}

	cards := make([]domain.Card, 0, len(response.Insights.Sections))
	for _, section := range response.Insights.Sections {
		id := fmt.Sprint(section.ID)
		if id == "" || id == "<nil>" {
			id = uuid.NewString()
		}
		docID := fmt.Sprint(section.PDFID)
		if docID == "" || docID == "<nil>" {
			if len(documentIDs) > 0 {
				docID = documentIDs[0]
			}
		}
		cards = append(cards, domain.Card{
			ID:               id,
			SourceDocumentID: docID,
			SourcePage:       section.Page,
			Heading:          section.Title,
			Snippet:          section.Content,
			ImportanceRank:   section.ImportanceRank,
		})
	}
	return cards, nil
}

func (c *Client) GenerateDetail(ctx context.Context, req ports.DetailRequest) (domain.Detail, error) {
	if err := c.genLimiter.Wait(ctx); err != nil {
		return domain.Detail{}, err
	}

	payload := map[string]any{
		"heading":    req.Heading,
		"content":    req.Snippet,
		"pdfName":    req.DocumentName,
		"pageNumber": req.PageNumber,
	}
	var response struct {
		BacksideInsights detailPayload `json:"backsideInsights"`
	}
	if err := c.postJSON(ctx, "/api/insights/generate-bulb-insights", payload, &response, "generate detail"); err != nil {
		return domain.Detail{}, err
	}
	return response.BacksideInsights.toDetail(), nil
}

func (c *Client) GenerateJobDetail(ctx context.Context, jobDescription string) (domain.Detail, error) {
	if err := c.genLimiter.Wait(ctx); err != nil {
		return domain.Detail{}, err
	}

	payload := map[string]any{"jobDescription": jobDescription}
	var response detailPayload
	if err := c.postJSON(ctx, "/api/insights/job-insights", payload, &response, "generate job detail"); err != nil {
		return domain.Detail{}, err
	}
	return response.toDetail(), nil
}

func (c *Client) GenerateAudio(ctx context.Context, req ports.AudioRequest) (domain.Audio, *domain.Detail, error) {
	if err := c.genLimiter.Wait(ctx); err != nil {
		return domain.Audio{}, nil, err
	}

	payload := map[string]any{
		"heading":    req.Heading,
		"content":    req.Content,
		"cardId":     req.CardID,
		"pdfName":    req.DocumentName,
		"pageNumber": req.PageNumber,
	}
	if p := detailPayloadFrom(req.Detail); p != nil {
		payload["backsideInsights"] = p
	}

	var response struct {
		Podcast struct {
			AudioPath string `json:"audioPath"`
			Duration  any    `json:"duration"`
		} `json:"podcast"`
		BacksideInsights *detailPayload `json:"backsideInsights"`
	}
	if err := c.postJSON(ctx, "/api/insights/generate-podcast", payload, &response, "generate audio"); err != nil {
		return domain.Audio{}, nil, err
	}
	if response.Podcast.AudioPath == "" {
		return domain.Audio{}, nil, fmt.Errorf("generate audio: empty audio path in response")
	}

	audio := domain.Audio{
		Location: response.Podcast.AudioPath,
		Duration: parseDuration(response.Podcast.Duration),
	}
	var detail *domain.Detail
	if response.BacksideInsights != nil {
		d := response.BacksideInsights.toDetail()
		if !d.IsZero() {
			detail = &d
		}
	}
	return audio, detail, nil
}

// parseDuration accepts seconds as a JSON number or a loose string such as
// "2-5 minutes"; unparseable values yield zero.
func parseDuration(raw any) time.Duration {
	switch v := raw.(type) {
	case float64:
		return time.Duration(v * float64(time.Second))
	case string:
		if secs, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return 0
}
