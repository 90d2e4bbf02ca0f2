package nuget

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/nugraph/pkg/integrations"
	ng "github.com/matzehuels/nugraph/pkg/nuget"
)

// registrationTypes are the service index resource types carrying the
// registration base URL, most preferred first.
var registrationTypes = []string{
	"RegistrationsBaseUrl/3.6.0",
	"RegistrationsBaseUrl/3.4.0",
	"RegistrationsBaseUrl/3.0.0-rc",
	"RegistrationsBaseUrl/3.0.0-beta",
	"RegistrationsBaseUrl",
}

const packageBaseType = "PackageBaseAddress/3.0.0"

type serviceIndex struct {
	Version   string     `json:"version"`
	Resources []resource `json:"resources"`
}

type resource struct {
	ID   string `json:"@id"`
	Type string `json:"@type"`
}

// endpoints are the resources a V3 feed must expose for resolution.
type endpoints struct {
	Registrations string
	PackageBase   string
}

func (idx *serviceIndex) endpoints() (endpoints, error) {
	var e endpoints
	for _, t := range registrationTypes {
		if e.Registrations = idx.find(t); e.Registrations != "" {
			break
		}
	}
	if e.Registrations == "" {
		return e, fmt.Errorf("service index has no %s resource", registrationTypes[len(registrationTypes)-1])
	}
	e.PackageBase = idx.find(packageBaseType)
	return e, nil
}

func (idx *serviceIndex) find(typ string) string {
	for _, r := range idx.Resources {
		if r.Type == typ {
			return strings.TrimSuffix(r.ID, "/") + "/"
		}
	}
	return ""
}

type registrationIndex struct {
	Count int                `json:"count"`
	Items []registrationPage `json:"items"`
}

type registrationPage struct {
	ID    string             `json:"@id"`
	Count int                `json:"count"`
	Lower string             `json:"lower"`
	Upper string             `json:"upper"`
	Items []registrationLeaf `json:"items"`
}

type registrationLeaf struct {
	ID             string       `json:"@id"`
	CatalogEntry   catalogEntry `json:"catalogEntry"`
	PackageContent string       `json:"packageContent"`
}

type catalogEntry struct {
	ID        string `json:"id"`
	Version   string `json:"version"`
	Listed    *bool  `json:"listed"`
	Published string `json:"published"`
}

// listed reports the listing flag. A missing flag means listed; feeds that
// predate the flag mark unlisted packages with a 1900 publish date.
func (e catalogEntry) listed() bool {
	if e.Listed != nil {
		return *e.Listed
	}
	return !strings.HasPrefix(e.Published, "1900-")
}

// entry is one version a source offers.
type entry struct {
	ID         string
	Version    ng.Version
	Listed     bool
	ContentURL string
}

func (c *Client) serviceEndpoints(ctx context.Context, address string) (endpoints, error) {
	var idx serviceIndex
	if err := c.http.GetCached(ctx, address, c.refresh, &idx); err != nil {
		return endpoints{}, fmt.Errorf("service index %s: %w", address, err)
	}
	return idx.endpoints()
}

// versions lists every version of id registered on the feed. A package the
// feed has never seen yields integrations.ErrNotFound.
func (c *Client) versions(ctx context.Context, ep endpoints, id string) ([]entry, error) {
	lower := integrations.NormalizeID(id)
	var idx registrationIndex
	if err := c.http.GetCached(ctx, ep.Registrations+lower+"/index.json", c.refresh, &idx); err != nil {
		return nil, err
	}

	var entries []entry
	for _, page := range idx.Items {
		leaves := page.Items
		if leaves == nil && page.ID != "" {
			var full registrationPage
			if err := c.http.GetCached(ctx, page.ID, c.refresh, &full); err != nil {
				return nil, fmt.Errorf("registration page %s: %w", page.ID, err)
			}
			leaves = full.Items
		}
		for _, leaf := range leaves {
			v, err := ng.ParseVersion(leaf.CatalogEntry.Version)
			if err != nil {
				c.logger.Debug("skipping unparsable version", "id", id, "version", leaf.CatalogEntry.Version)
				continue
			}
			e := entry{
				ID:         leaf.CatalogEntry.ID,
				Version:    v,
				Listed:     leaf.CatalogEntry.listed(),
				ContentURL: leaf.PackageContent,
			}
			if e.ContentURL == "" && ep.PackageBase != "" {
				e.ContentURL = contentURL(ep.PackageBase, id, v.String())
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// contentURL builds the flat-container download URL of a package.
func contentURL(base, id, version string) string {
	id = integrations.NormalizeID(id)
	version = strings.ToLower(version)
	return fmt.Sprintf("%s%s/%s/%s.%s.nupkg", base, id, version, id, version)
}
