//go:build !gcp

package archive

import (
	"context"
	"fmt"
)

func newGCSSinkFromEnv(ctx context.Context) (Sink, error) {
	return nil, fmt.Errorf("archive: GCS sink is not enabled in this build (use -tags gcp)")
}
