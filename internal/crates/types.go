package crates

import "time"

// CrateInfo holds the metadata record for a crate.
type CrateInfo struct {
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	NewestVersion string    `json:"newest_version"`
	Downloads     uint64    `json:"downloads"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Homepage      string    `json:"homepage,omitempty"`
	Repository    string    `json:"repository,omitempty"`
	Documentation string    `json:"documentation,omitempty"`
	Keywords      []string  `json:"keywords,omitempty"`
	Categories    []string  `json:"categories,omitempty"`
	MaxUploadSize uint64    `json:"max_upload_size,omitempty"`
}

// Version describes a single published version of a crate.
type Version struct {
	Num       string    `json:"num"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Downloads uint64    `json:"downloads"`
	Yanked    bool      `json:"yanked"`
	CrateSize uint64    `json:"crate_size,omitempty"`
	License   string    `json:"license,omitempty"`
}

// Dependency describes one dependency of a crate version.
type Dependency struct {
	Name            string   `json:"crate_id"`
	Req             string   `json:"req"`
	Kind            string   `json:"kind"`
	Optional        bool     `json:"optional"`
	DefaultFeatures bool     `json:"default_features"`
	Target          string   `json:"target,omitempty"`
	Features        []string `json:"features,omitempty"`
}

// SearchResult is a single entry from the registry search endpoint.
type SearchResult struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	NewestVersion string `json:"newest_version"`
	Downloads     uint64 `json:"downloads"`
	ExactMatch    bool   `json:"exact_match"`
}

// VersionDownload pairs a version with its download count.
type VersionDownload struct {
	Version   string    `json:"version"`
	Downloads uint64    `json:"downloads"`
	Date      time.Time `json:"date"`
}

// DownloadStats aggregates per-crate download figures.
type DownloadStats struct {
	Total    uint64            `json:"total"`
	Versions []VersionDownload `json:"versions"`
}

// Status classifies the publication state of a crate.
type Status string

const (
	StatusExists          Status = "exists"
	StatusNotFound        Status = "not_found"
	StatusYanked          Status = "yanked"
	StatusPartiallyYanked Status = "partially_yanked"
)

// Wire types matching the crates.io API response envelopes.

type crateResponse struct {
	Crate      crateAPIInfo `json:"crate"`
	Versions   []Version    `json:"versions"`
	Keywords   []keyword    `json:"keywords"`
	Categories []category   `json:"categories"`
}

type crateAPIInfo struct {
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	NewestVersion string    `json:"newest_version"`
	Downloads     uint64    `json:"downloads"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Homepage      string    `json:"homepage"`
	Repository    string    `json:"repository"`
	Documentation string    `json:"documentation"`
	MaxUploadSize uint64    `json:"max_upload_size"`
}

type keyword struct {
	Keyword string `json:"keyword"`
}

type category struct {
	Category string `json:"category"`
}

type versionsResponse struct {
	Versions []Version `json:"versions"`
}

type searchResponse struct {
	Crates []SearchResult `json:"crates"`
	Meta   searchMeta     `json:"meta"`
}

type searchMeta struct {
	Total uint32 `json:"total"`
}

type dependenciesResponse struct {
	Dependencies []Dependency `json:"dependencies"`
}

func (r *crateResponse) toCrateInfo() *CrateInfo {
	info := &CrateInfo{
		Name:          r.Crate.Name,
		Description:   r.Crate.Description,
		NewestVersion: r.Crate.NewestVersion,
		Downloads:     r.Crate.Downloads,
		CreatedAt:     r.Crate.CreatedAt,
		UpdatedAt:     r.Crate.UpdatedAt,
		Homepage:      r.Crate.Homepage,
		Repository:    r.Crate.Repository,
		Documentation: r.Crate.Documentation,
		MaxUploadSize: r.Crate.MaxUploadSize,
	}
	for _, k := range r.Keywords {
		info.Keywords = append(info.Keywords, k.Keyword)
	}
	for _, c := range r.Categories {
		info.Categories = append(info.Categories, c.Category)
	}
	return info
}
