package remote

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/omarkov/insight-session/internal/core/domain"
	"github.com/omarkov/insight-session/internal/core/ports"
	"github.com/omarkov/insight-session/internal/infrastructure/resilience"
)

// Client talks to the insight backend. Generation endpoints are throttled by
// a shared limiter; all calls honor the bearer credential and clear it on a
// 401 so the next interactive action re-authenticates.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials ports.CredentialStore
	executor    *resilience.Executor
	genLimiter  *rate.Limiter
}

type Options struct {
	Timeout            time.Duration
	GenerationPerMin   int
	ResilienceExecutor *resilience.Executor
}

func New(baseURL string, credentials ports.CredentialStore, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	perMin := options.GenerationPerMin
	if perMin <= 0 {
		perMin = 20
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		credentials: credentials,
		executor:    options.ResilienceExecutor,
		genLimiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), perMin),
	}
}

type pdfPayload struct {
	ID         any    `json:"id"`
	Filename   string `json:"filename"`
	Name       string `json:"name"`
	UploadDate string `json:"uploadDate"`
	PageCount  int    `json:"pageCount"`
	Status     string `json:"status"`
}

func (p pdfPayload) toDocument() domain.Document {
	name := p.Filename
	if name == "" {
		name = p.Name
	}
	uploaded, _ := time.Parse(time.RFC3339, p.UploadDate)
	return domain.Document{
		ID:          fmt.Sprint(p.ID),
		DisplayName: name,
		UploadedAt:  uploaded,
		PageCount:   p.PageCount,
		Processing:  mapStatus(p.Status),
	}
}

func mapStatus(status string) domain.ProcessingState {
	switch strings.ToLower(status) {
	case "pending", "processing", "uploaded":
		return domain.ProcessingPending
	case "completed", "ready", "processed":
		return domain.ProcessingCompleted
	default:
		return domain.ProcessingError
	}
}

func (c *Client) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	var response struct {
		PDFs []pdfPayload `json:"pdfs"`
	}
	if err := c.getJSON(ctx, "/api/pdf", &response, "list documents"); err != nil {
		return nil, err
	}
	docs := make([]domain.Document, 0, len(response.PDFs))
	for _, p := range response.PDFs {
		docs = append(docs, p.toDocument())
	}
	return docs, nil
}

func (c *Client) UploadDocument(ctx context.Context, filename string, content []byte, pageCount int) (domain.Document, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("files", filename)
	if err != nil {
		return domain.Document{}, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return domain.Document{}, fmt.Errorf("write upload form: %w", err)
	}
	if pageCount > 0 {
		if err := writer.WriteField("pageCount", fmt.Sprint(pageCount)); err != nil {
			return domain.Document{}, fmt.Errorf("write upload field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return domain.Document{}, fmt.Errorf("close upload form: %w", err)
	}

	var response struct {
		PDFs []pdfPayload `json:"pdfs"`
	}
	err = c.do(ctx, http.MethodPost, "/api/pdf/upload", body.Bytes(), writer.FormDataContentType(), &response, "upload document")
	if err != nil {
		return domain.Document{}, err
	}
	if len(response.PDFs) == 0 {
		return domain.Document{}, fmt.Errorf("upload document: empty response")
	}
	doc := response.PDFs[0].toDocument()
	if doc.PageCount == 0 {
		doc.PageCount = pageCount
	}
	return doc, nil
}

func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/pdf/"+id, nil, "", nil, "delete document")
}

func (c *Client) FetchDocumentContent(ctx context.Context, id string) ([]byte, error) {
	return c.getBytes(ctx, "/api/pdf/"+id+"/download", "fetch document content")
}

func (c *Client) FetchAudio(ctx context.Context, location string) ([]byte, error) {
	path := location
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		path = strings.TrimPrefix(location, c.baseURL)
	}
	return c.getBytes(ctx, path, "fetch audio")
}

func (c *Client) SectionContent(ctx context.Context, documentID string, page int) ([]domain.SectionContent, error) {
	var response struct {
		Sections []struct {
			Title      string `json:"section_title"`
			Content    string `json:"content"`
			PageNumber int    `json:"page_number"`
		} `json:"sections"`
	}
	path := fmt.Sprintf("/api/insights/section-content/%s/%d", documentID, page)
	if err := c.getJSON(ctx, path, &response, "section content"); err != nil {
		return nil, err
	}
	sections := make([]domain.SectionContent, 0, len(response.Sections))
	for _, s := range response.Sections {
		sections = append(sections, domain.SectionContent{
			Title:      s.Title,
			Content:    s.Content,
			PageNumber: s.PageNumber,
		})
	}
	return sections, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.getJSON(ctx, "/api/health", &struct{}{}, "health check")
}

// Me reports the authenticated account's email, verifying the stored
// credential in the process.
func (c *Client) Me(ctx context.Context) (string, error) {
	var response struct {
		Email string `json:"email"`
	}
	if err := c.getJSON(ctx, "/api/auth/me", &response, "whoami"); err != nil {
		return "", err
	}
	return response.Email, nil
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	var response struct {
		AccessToken string `json:"access_token"`
	}
	payload := map[string]string{"email": email, "password": password}
	if err := c.postJSON(ctx, "/api/auth/login", payload, &response, "login"); err != nil {
		return err
	}
	if response.AccessToken == "" {
		return fmt.Errorf("login: empty token in response")
	}
	return c.credentials.SaveToken(ctx, response.AccessToken)
}
