package app

var (
	IgnoredPath = ignoredPath
	GraphDirs   = graphDirs
)
