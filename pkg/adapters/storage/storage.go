// Package storage holds the object buckets QR images are uploaded to.
package storage

import (
	"errors"
	"net/url"
	"strings"
)

// ErrNotFound is returned by Download when the object does not exist.
var ErrNotFound = errors.New("object not found")

// PublicPath is the route prefix objects are served under.
const PublicPath = "/storage/v1/object/public/"

func publicURL(baseURL, bucket, name string) string {
	return strings.TrimRight(baseURL, "/") + PublicPath + url.PathEscape(bucket) + "/" + url.PathEscape(name)
}

func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && name != "." && name != ".."
}
