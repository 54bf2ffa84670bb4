package handler

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RouterRootPath is the root path of a route group.
	RouterRootPath = "/"

	// APIPrefix is the path prefix of the JSON API.
	APIPrefix = "/api"

	// ErrNilDepsFatalLogMsg is used if the app, cfg or a collaborator
	// pointer is nil.
	ErrNilDepsFatalLogMsg = "app, cfg or handler dependency is nil"
)
