package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/url"
	"path"
	"strings"

	"github.com/hyperjump/ecorank/pkg/utils"
)

// MockClient is a deterministic offline client. It answers with one record per
// comma-separated link: the name is derived from the link's last path segment
// and the index from a hash of the link, so the same link always scores the same.
type MockClient struct{}

// NewMockClient returns a deterministic client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

type mockRecord struct {
	Name  string  `json:"product_name"`
	Index float64 `json:"index"`
}

// Query returns a JSON record list for the links in batch.
func (c *MockClient) Query(ctx context.Context, batch, instruction string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", unavailable("inference.Mock", err)
	}
	links := strings.Split(batch, ", ")
	records := make([]mockRecord, 0, len(links))
	for _, link := range links {
		records = append(records, mockRecord{Name: mockName(link), Index: mockIndex(link)})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to marshal mock reply: %w", err)
	}
	return string(data), nil
}

func mockHash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// mockIndex maps link to [0.10, 0.90] in steps of 0.01.
func mockIndex(link string) float64 {
	return utils.Round(0.10+float64(mockHash(link)%81)/100, 2)
}

func mockName(link string) string {
	segment := link
	if u, err := url.Parse(link); err == nil && u.Path != "" {
		segment = path.Base(strings.TrimSuffix(u.Path, "/"))
	}
	segment = strings.TrimSuffix(segment, path.Ext(segment))
	name := utils.HumanizeSlug(segment, 6)
	if name == "" {
		return fmt.Sprintf("Product %04x", mockHash(link)&0xffff)
	}
	return name
}
