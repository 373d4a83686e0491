package domain

import (
	"time"

	accountdomain "github.com/narwhalmedia/classifieds/internal/account/domain"
	listingdomain "github.com/narwhalmedia/classifieds/internal/listing/domain"
	referencedomain "github.com/narwhalmedia/classifieds/internal/reference/domain"
	reportdomain "github.com/narwhalmedia/classifieds/internal/report/domain"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
)

// BulkOutcome summarizes one bulk moderation request. Ids that were
// already in the target state count as skipped, neither succeeded nor
// failed, so SucceededCount+len(FailedIDs) never exceeds RequestedCount.
type BulkOutcome struct {
	RequestedCount int              `json:"requested_count"`
	SucceededCount int              `json:"succeeded_count"`
	SkippedCount   int              `json:"skipped_count"`
	FailedIDs      []int64          `json:"failed_ids"`
	Failures       map[int64]string `json:"failures,omitempty"`
	Message        string           `json:"message"`
}

// Failed reports whether id is among the failed ids.
func (o *BulkOutcome) Failed(id int64) bool {
	_, ok := o.Failures[id]
	return ok
}

// Dashboard is the admin landing snapshot. Signups holds one bucket per
// calendar month, oldest first, ending with the current month.
type Dashboard struct {
	Posts       listingdomain.PostStats       `json:"posts"`
	Users       accountdomain.UserStats       `json:"users"`
	Categories  referencedomain.CategoryStats `json:"categories"`
	Reports     reportdomain.ReportStats      `json:"reports"`
	Featured    []*listingdomain.Post         `json:"featured"`
	Signups     []accountdomain.MonthlyCount  `json:"signups"`
	GeneratedAt time.Time                     `json:"generated_at"`
}

// ReportQueueRow is one report in the admin queue with the reported post.
// PostTitle is empty when the post no longer exists.
type ReportQueueRow struct {
	*reportdomain.Report
	PostTitle  string               `json:"post_title"`
	PostStatus listingdomain.Status `json:"post_status,omitempty"`
}

// SystemInfo describes the running process for the admin status page.
type SystemInfo struct {
	Service    string                `json:"service"`
	Version    string                `json:"version"`
	Hostname   string                `json:"hostname"`
	GoVersion  string                `json:"go_version"`
	NumCPU     int                   `json:"num_cpu"`
	Goroutines int                   `json:"goroutines"`
	HeapBytes  uint64                `json:"heap_bytes"`
	ServerTime time.Time             `json:"server_time"`
	Uptime     time.Duration         `json:"uptime"`
	Database   string                `json:"database"`
	Cache      interfaces.CacheStats `json:"cache"`
}
