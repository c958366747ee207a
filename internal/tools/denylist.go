package tools

import (
	"path/filepath"
	"strings"
)

// denyPatterns lists path globs excluded from every search and listing
// regardless of the caller's own pattern: version-control metadata, build
// caches, compiled objects, archives, media, and office documents.
var denyPatterns = []string{
	".git/*",
	"node_modules/*",
	".next/*",
	".turbo/*",
	"__pycache__/*",
	"*.wasm",
	"*.woff2",
	"*.pack",
	"*.pack.gz",
	"*.pyc",
	"*.so",
	"*.dll",
	"*.dylib",
	"*.exe",
	"*.bin",
	"*.dat",
	"*.db",
	"*.sqlite",
	"*.sqlite3",
	"*.log",
	"*.cache",
	"*.tmp",
	"*.temp",
	"*.swp",
	"*.swo",
	"*.bak",
	"*.backup",
	"*.orig",
	"*.rej",
	"*.patch",
	"*.diff",
	"*.tar",
	"*.tar.zst",
	"*.gz",
	"*.zip",
	"*.rar",
	"*.7z",
	"*.bz2",
	"*.xz",
	"*.lzma",
	"*.lz4",
	"*.zst",
	"*.tgz",
	"*.tbz2",
	"*.txz",
	"*.pdf",
	"*.doc",
	"*.docx",
	"*.xls",
	"*.xlsx",
	"*.ppt",
	"*.pptx",
	"*.png",
	"*.jpg",
	"*.jpeg",
	"*.gif",
	"*.bmp",
	"*.tiff",
	"*.ico",
}

// deniedPath reports whether the path matches any deny-list pattern.
// Directory patterns like ".git/*" also match the directory itself.
func deniedPath(path string) bool {
	for _, pattern := range denyPatterns {
		if matchGlob(pattern, path, true) {
			return true
		}
		// ".git/*" should also exclude the ".git" entry itself so the
		// walker can skip the whole subtree.
		if dir, ok := strings.CutSuffix(pattern, "/*"); ok {
			if filepath.Base(path) == dir {
				return true
			}
		}
	}
	return false
}

// hiddenPath reports whether any segment of the (relative) path is
// dot-prefixed. Dot entries are excluded at every directory level.
func hiddenPath(relPath string) bool {
	for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
