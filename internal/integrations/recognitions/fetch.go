package recognitions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"recogstats/internal/domain"

	"github.com/tidwall/gjson"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrInvalidDocument  = errors.New("invalid recognitions document")
)

const maxErrorBody = 256

// Fetcher talks to the recognitions host: data documents and the sibling
// manifest used for last-modified lookups.
type Fetcher struct {
	client           *http.Client
	manifestFilename string
}

func NewFetcher(client *http.Client, manifestFilename string) *Fetcher {
	if client == nil {
		client = externalHTTPClient
	}
	if manifestFilename == "" {
		manifestFilename = DefaultManifestFilename
	}
	return &Fetcher{client: client, manifestFilename: manifestFilename}
}

// FetchDocument GETs a recognitions document. Any status other than 200 is
// an ErrUnexpectedStatus error. No retries.
func (f *Fetcher) FetchDocument(ctx context.Context, url string) (domain.RecognitionDocument, error) {
	body, err := f.get(ctx, url)
	if err != nil {
		return domain.RecognitionDocument{}, err
	}
	return ParseDocument(body)
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, fmt.Errorf("%w %d from %s: %s", ErrUnexpectedStatus, resp.StatusCode, url, snippet)
	}
	return body, nil
}

// ParseDocument normalizes a `{total, data}` body. Fields of any JSON type
// are read as strings; missing fields are empty.
func ParseDocument(body []byte) (domain.RecognitionDocument, error) {
	if !gjson.ValidBytes(body) {
		return domain.RecognitionDocument{}, fmt.Errorf("%w: malformed json", ErrInvalidDocument)
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return domain.RecognitionDocument{}, fmt.Errorf("%w: top level is not an object", ErrInvalidDocument)
	}

	data := root.Get("data")
	if data.Exists() && data.Type != gjson.Null && !data.IsArray() {
		return domain.RecognitionDocument{}, fmt.Errorf("%w: data is not an array", ErrInvalidDocument)
	}

	doc := domain.RecognitionDocument{Total: int(root.Get("total").Int())}
	for _, item := range data.Array() {
		doc.Data = append(doc.Data, parseRecord(item))
	}
	return doc, nil
}

func parseRecord(item gjson.Result) domain.RecognitionRecord {
	return domain.RecognitionRecord{
		LDAP:        item.Get("LDAP").String(),
		Name:        item.Get("Name").String(),
		Heading:     item.Get("Heading").String(),
		Title:       item.Get("Title").String(),
		Description: item.Get("Description").String(),
		StartDate:   item.Get("Start Date").String(),
		EndDate:     item.Get("End Date").String(),
		ImageURL:    item.Get("Image URL").String(),
	}
}
