package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cookiescgov/docuseal-to-pdf/internal/descriptions"
	"github.com/cookiescgov/docuseal-to-pdf/internal/fillable"
)

// DirectoryCache provides TTL-based caching for directory contents
type DirectoryCache struct {
	entries map[string]*CacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
}

// CacheEntry represents a cached directory scan result
type CacheEntry struct {
	files      []FileInfo
	lastUpdate time.Time
}

// NewDirectoryCache creates a new directory cache with specified TTL
func NewDirectoryCache(ttl time.Duration) *DirectoryCache {
	return &DirectoryCache{
		entries: make(map[string]*CacheEntry),
		ttl:     ttl,
	}
}

// Get returns the cached files for path, or nil when missing or expired
func (c *DirectoryCache) Get(path string) []FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[path]
	if !exists || time.Since(entry.lastUpdate) > c.ttl {
		return nil
	}
	return entry.files
}

// Set stores directory contents in cache
func (c *DirectoryCache) Set(path string, files []FileInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = &CacheEntry{files: files, lastUpdate: time.Now()}
}

// Invalidate drops the entry for path
func (c *DirectoryCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, path)
}

// DirectoryScanner lists PDF files below a directory within depth, count and time limits
type DirectoryScanner struct {
	maxDepth  int
	fileLimit int
	timeLimit time.Duration
}

// NewDirectoryScanner creates a scanner. A zero limit disables that limit.
func NewDirectoryScanner(maxDepth, fileLimit int, timeLimit time.Duration) *DirectoryScanner {
	return &DirectoryScanner{
		maxDepth:  maxDepth,
		fileLimit: fileLimit,
		timeLimit: timeLimit,
	}
}

// Scan walks root, skipping hidden entries and symlinks
func (s *DirectoryScanner) Scan(ctx context.Context, root string) ([]FileInfo, error) {
	if s.timeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeLimit)
		defer cancel()
	}

	files := make([]FileInfo, 0)
	err := s.scan(ctx, root, 0, &files)
	if errors.Is(err, context.DeadlineExceeded) {
		// a slow directory yields a truncated list
		err = nil
	}
	return files, err
}

func (s *DirectoryScanner) scan(ctx context.Context, dir string, depth int, files *[]FileInfo) error {
	if s.maxDepth > 0 && depth >= s.maxDepth {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.fileLimit > 0 && len(*files) >= s.fileLimit {
			return nil
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") || entry.Type()&os.ModeSymlink != 0 {
			continue
		}

		path := filepath.Join(dir, name)
		if entry.IsDir() {
			if err := s.scan(ctx, path, depth+1, files); err != nil {
				return err
			}
			continue
		}

		if !strings.EqualFold(filepath.Ext(name), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		*files = append(*files, FileInfo{
			Name:         name,
			Path:         path,
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
	}
	return nil
}

// PDFServerInfo builds server info results, caching the directory listing
type PDFServerInfo struct {
	cache   *DirectoryCache
	scanner *DirectoryScanner
	service *Service
}

// NewPDFServerInfo creates a server info handler for service
func NewPDFServerInfo(service *Service) *PDFServerInfo {
	return &PDFServerInfo{
		cache:   NewDirectoryCache(5 * time.Minute),
		scanner: NewDirectoryScanner(5, 100, 3*time.Second),
		service: service,
	}
}

// GetServerInfo returns the configuration, tools and source PDFs
func (p *PDFServerInfo) GetServerInfo(serverName, version string) (*PDFServerInfoResult, error) {
	dir := p.service.pathValidator.GetConfiguredDirectory()

	files := p.cache.Get(dir)
	if files == nil {
		var err error
		files, err = p.scanner.Scan(context.Background(), dir)
		if err != nil {
			files = []FileInfo{}
		}
		p.cache.Set(dir, files)
	}

	return &PDFServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  dir,
		OutputDirectory:   p.service.outputValidator.GetConfiguredDirectory(),
		OutputSuffix:      p.service.outputSuffix,
		MaxFileSize:       p.service.maxFileSize,
		AvailableTools:    p.getAvailableTools(),
		DirectoryContents: files,
		FieldTypes:        fieldTypeTable(),
		UsageGuidance:     p.getUsageGuidance(),
	}, nil
}

// InvalidateDirectory forces the next call to rescan; used after writing output
// into the source directory
func (p *PDFServerInfo) InvalidateDirectory(dir string) {
	p.cache.Invalidate(dir)
}

func (p *PDFServerInfo) getAvailableTools() []ToolInfo {
	pathParam := "path (required): Full path to the PDF file inside the configured directory"
	return []ToolInfo{
		{
			Name:        "pdf_make_fillable",
			Description: descriptions.GetToolDescription("pdf_make_fillable"),
			Usage:       "Add form widgets to a static PDF from a field schema.",
			Parameters: pathParam + ", fields (required): JSON array of field schemas, " +
				"output (optional): output file name inside the output directory",
		},
		{
			Name:        "pdf_validate_file",
			Description: descriptions.GetToolDescription("pdf_validate_file"),
			Usage:       "Check that a file is a readable PDF before making it fillable.",
			Parameters:  pathParam,
		},
		{
			Name:        "pdf_extract_forms",
			Description: descriptions.GetToolDescription("pdf_extract_forms"),
			Usage:       "List form fields and widgets, e.g. to verify a generated document.",
			Parameters:  pathParam,
		},
		{
			Name:        "pdf_page_info",
			Description: descriptions.GetToolDescription("pdf_page_info"),
			Usage:       "Get page count, page boxes and permissions.",
			Parameters:  pathParam,
		},
		{
			Name:        "pdf_server_info",
			Description: descriptions.GetToolDescription("pdf_server_info"),
			Usage:       "Get server configuration and the PDFs available for processing.",
			Parameters:  "No parameters required",
		},
	}
}

// fieldTypeTable describes what each schema type becomes
func fieldTypeTable() map[string]string {
	types := []fillable.FieldType{
		fillable.FieldTypeText, fillable.FieldTypeDate, fillable.FieldTypeNumber,
		fillable.FieldTypeCheckbox, fillable.FieldTypeRadio,
	}
	table := make(map[string]string, len(types)+1)
	for _, t := range types {
		table[string(t)] = fillable.ResolveKind(t).String()
	}
	table["*"] = fillable.KindUnsupported.String()
	return table
}

func (p *PDFServerInfo) getUsageGuidance() string {
	maxFileSizeMB := p.service.maxFileSize / (1024 * 1024)

	return fmt.Sprintf(`Fillable PDF Server Usage Guide:

1. DISCOVER: 'pdf_server_info' lists the PDFs in the source directory.
2. CHECK: 'pdf_validate_file' and 'pdf_page_info' confirm the file opens and how many pages it has.
3. GENERATE: 'pdf_make_fillable' with the field schema writes <name>%s.pdf to %s.
4. VERIFY: 'pdf_extract_forms' on the output lists the created fields and widgets.

NOTES:
- Areas are fractions of the page with a top-left origin; pages are zero-based
- Unsupported field types and out-of-range pages are reported as skipped, not as errors
- Files up to %dMB are accepted`,
		p.service.outputSuffix, p.service.outputValidator.GetConfiguredDirectory(), maxFileSizeMB)
}
