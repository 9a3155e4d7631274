// Package keys centralizes cache key construction.
// It is kept in internal to avoid leaking key formats to public API.
//
// Every key for an owner carries the owner inside a Redis hash tag
// ("taskq:{owner}:...") so that all of them map to the same cluster slot.
// The owner is query-escaped, which keeps ':', '{', '}' and glob characters
// out of the tag and makes the encoding injective.
package keys

import (
	"net/url"
	"strconv"
)

const prefix = "taskq:"

func tag(owner string) string { return prefix + "{" + url.QueryEscape(owner) + "}" }

// Owner is the unsuffixed per-owner key used by older deployments.
func Owner(owner string) string { return tag(owner) }

// Version holds the owner's namespace counter. Bumping it orphans every
// list key built with the previous value.
func Version(owner string) string { return tag(owner) + ":ver" }

// ListPrefix is the common prefix of all list keys for owner, any version.
func ListPrefix(owner string) string { return tag(owner) + ":list:" }

// ListParams is the closed set of query fields that feed a list key.
type ListParams struct {
	Status   string
	Priority string
	Page     int
	PageSize int
}

// List returns the key for one page of a filtered list query under the given
// namespace version. Fields are encoded with url.Values, which sorts by name,
// so logically identical queries always produce the same key.
func List(owner string, version int64, p ListParams) string {
	v := url.Values{}
	v.Set("status", p.Status)
	v.Set("priority", p.Priority)
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("size", strconv.Itoa(p.PageSize))
	return ListPrefix(owner) + "v" + strconv.FormatInt(version, 10) + ":" + v.Encode()
}

// Set holds precomputed keys for one owner.
type Set struct {
	Owner      string
	Version    string
	ListPrefix string
}

// For returns the precomputed keys for owner.
func For(owner string) Set {
	t := tag(owner)
	return Set{
		Owner:      t,
		Version:    t + ":ver",
		ListPrefix: t + ":list:",
	}
}
