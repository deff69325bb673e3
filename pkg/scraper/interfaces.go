package scraper

import "context"

// BackendInstaller is implemented by media backends that can install their own binary
type BackendInstaller interface {
	Install(ctx context.Context) error
}
