// Package catalog enumerates the stored renditions of a case's generated
// report and orders them chronologically.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/kartik-devs/lcp-compare/storage"
)

// Version is one stored rendition of a case's generated document.
type Version struct {
	// Key is the opaque storage key, unique within a case.
	Key string
	// CaseID is the owning case.
	CaseID string
	// Timestamp orders versions. Parsed from the key when possible,
	// otherwise the store's last-modified time.
	Timestamp time.Time
	// Size in bytes as reported by the store.
	Size int64
	// Filename is the last path element of the key.
	Filename string
	// GroundTruth marks the human-authored source document rather than a
	// generated rendition.
	GroundTruth bool
}

// CatalogError means the storage backend could not be queried. A case with
// no matching documents is an empty result, not a CatalogError.
type CatalogError struct {
	CaseID string
	Err    error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog: case %s: %v", e.CaseID, e.Err)
}

func (e *CatalogError) Unwrap() error { return e.Err }

// Generated report keys look like
// {case}/Output/YYYYMMDDHHMM-{case}-CompleteAIGeneratedReport.pdf with a
// few historical type spellings; doctor-review renditions end in
// _LLM_As_Doctor. Ground-truth documents live under {case}/GroundTruth/.
var (
	timestampRe  = regexp.MustCompile(`(\d{12})`)
	casePrefixRe = regexp.MustCompile(`^case_(\d+)/$`)
)

const timestampLayout = "200601021504"

// Catalog lists document versions from an object store.
type Catalog struct {
	store storage.ObjectStore
	log   *slog.Logger
}

// New creates a catalog over store. A nil logger falls back to slog.Default.
func New(store storage.ObjectStore, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{store: store, log: log}
}

// ListVersions returns the case's document versions sorted ascending by
// timestamp. An unknown or empty case yields an empty slice and nil error;
// a storage failure yields a *CatalogError.
func (c *Catalog) ListVersions(ctx context.Context, caseID string) ([]Version, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return nil, &CatalogError{CaseID: caseID, Err: fmt.Errorf("empty case id")}
	}

	objects, err := c.store.List(ctx, caseID+"/")
	if err != nil {
		return nil, &CatalogError{CaseID: caseID, Err: err}
	}

	reportRe := reportPattern(caseID)

	var versions []Version
	for _, obj := range objects {
		v, ok := parseVersion(caseID, obj, reportRe)
		if !ok {
			continue
		}
		versions = append(versions, v)
	}

	sort.SliceStable(versions, func(i, j int) bool {
		if !versions[i].Timestamp.Equal(versions[j].Timestamp) {
			return versions[i].Timestamp.Before(versions[j].Timestamp)
		}
		return versions[i].Key < versions[j].Key
	})

	c.log.Debug("listed versions", "case_id", caseID, "count", len(versions))
	return versions, nil
}

// ListCases enumerates case ids present in the store, newest-looking first.
// Cases are top-level case_{id} prefixes with numeric ids.
func (c *Catalog) ListCases(ctx context.Context) ([]string, error) {
	objects, err := c.store.List(ctx, "")
	if err != nil {
		return nil, &CatalogError{Err: err}
	}

	seen := make(map[string]bool)
	var cases []string
	for _, obj := range objects {
		first, _, found := strings.Cut(obj.Key, "/")
		if !found {
			continue
		}
		m := casePrefixRe.FindStringSubmatch(first + "/")
		if m == nil || seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		cases = append(cases, m[1])
	}
	sort.Sort(sort.Reverse(sort.StringSlice(cases)))
	return cases, nil
}

// reportPattern matches generated-report filenames for a case:
// YYYYMMDDHHMM-{case}-{type} with the type spellings seen in production.
func reportPattern(caseID string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(\d{12})-` + regexp.QuoteMeta(caseID) +
		`-(CompleteAIGeneratedReport|CompleteAIGenerated|LCP|LifeCarePlan|.*_LLM_As_Doctor)`)
}

func parseVersion(caseID string, obj storage.ObjectInfo, reportRe *regexp.Regexp) (Version, bool) {
	filename := obj.Key[strings.LastIndex(obj.Key, "/")+1:]

	if isGroundTruth(obj.Key, filename) {
		return Version{
			Key:         obj.Key,
			CaseID:      caseID,
			Timestamp:   obj.LastModified,
			Size:        obj.Size,
			Filename:    filename,
			GroundTruth: true,
		}, true
	}

	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return Version{}, false
	}
	if !reportRe.MatchString(filename) &&
		!strings.Contains(filename, "CompleteAIGenerated") &&
		!strings.Contains(filename, "LCP") {
		return Version{}, false
	}

	ts := obj.LastModified
	if m := timestampRe.FindStringSubmatch(filename); m != nil {
		if parsed, err := time.Parse(timestampLayout, m[1]); err == nil {
			ts = parsed
		}
	}

	return Version{
		Key:       obj.Key,
		CaseID:    caseID,
		Timestamp: ts,
		Size:      obj.Size,
		Filename:  filename,
	}, true
}

func isGroundTruth(key, filename string) bool {
	if !strings.Contains(key, "GroundTruth") {
		return false
	}
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".pdf") || strings.HasSuffix(lower, ".docx")
}
