package utils

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	FILE_EXT_SHP     = ".shp"
	FILE_EXT_GEOJSON = ".geojson"
	FILE_EXT_JSON    = ".json"
	FILE_EXT_TIF     = ".tif"
	FILE_EXT_TIFF    = ".tiff"
	FILE_EXT_IMG     = ".img"
	FILE_EXT_XLSX    = ".xlsx"

	TMP_FILE_SUFFIX = ".tmp"
)

var (
	ErrNotDir = errors.New("not a directory")

	rasterExts = []string{FILE_EXT_TIF, FILE_EXT_TIFF, FILE_EXT_IMG}
)

// 在目标文件同目录下生成唯一的临时文件路径（同一文件系统，便于原子rename）
func GetUniqTmpPath(target string) string {
	dir, name := filepath.Split(target)
	return filepath.Join(dir, "."+name+"."+uuid.NewString()+TMP_FILE_SUFFIX)
}

func IsRasterFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range rasterExts {
		if ext == e {
			return true
		}
	}
	return false
}

// 列出目录下的影像文件（.tif/.tiff/.img），按文件名排序
func ListRasterFiles(dir string) (files []string, err error) {
	info, err := os.Stat(dir)
	if err != nil {
		return
	}
	if !info.IsDir() {
		err = ErrNotDir
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || !IsRasterFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return
}
