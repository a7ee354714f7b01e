package estimate

import (
	"strings"
)

const urnCRSPrefix = "urn:ogc:def:crs:"

type CRSRef struct {
	Input string // raster / boundary
	Path  string
	ID    string
}

// 规范化坐标系标识：
// "epsg:3348" / "EPSG:3348" / "3348" / "urn:ogc:def:crs:EPSG::3348" -> "EPSG:3348"
func NormalizeCRS(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(id), urnCRSPrefix) {
		parts := strings.Split(id[len(urnCRSPrefix):], ":")
		if len(parts) >= 2 {
			return strings.ToUpper(parts[0]) + ":" + parts[len(parts)-1]
		}
	}
	if isDigits(id) {
		return "EPSG:" + id
	}
	if i := strings.IndexByte(id, ':'); i > 0 {
		return strings.ToUpper(id[:i]) + ":" + strings.ToUpper(strings.TrimLeft(id[i+1:], ":"))
	}
	return strings.ToUpper(id)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// 校验所有输入的坐标系都与期望一致，不做任何重投影
func ValidateCRS(expected string, refs ...CRSRef) error {
	exp := NormalizeCRS(expected)
	for _, ref := range refs {
		if actual := NormalizeCRS(ref.ID); actual == "" || actual != exp {
			return &CRSMismatchError{
				Input:    ref.Input,
				Path:     ref.Path,
				Actual:   actual,
				Expected: exp,
			}
		}
	}
	return nil
}
