package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"objgate/internal/config"
)

const (
	DriverMinIO = "minio"
	DriverS3    = "s3"
)

type bucketEnsurer interface {
	EnsureBucket(ctx context.Context) error
}

// Open builds the Store for driver and logs once it is ready. When
// ensureBucket is set the bucket is created if missing, which is the only
// network call made here.
func Open(ctx context.Context, driver string, b config.Binding, ensureBucket bool, log *zap.Logger) (Store, error) {
	var (
		s   Store
		err error
	)
	switch driver {
	case "", DriverMinIO:
		driver = DriverMinIO
		s, err = NewMinIO(b)
	case DriverS3:
		s, err = NewS3(ctx, b)
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", config.ErrMisconfiguration, driver)
	}
	if err != nil {
		return nil, err
	}

	if ensureBucket {
		if e, ok := s.(bucketEnsurer); ok {
			if err := e.EnsureBucket(ctx); err != nil {
				return nil, err
			}
		}
	}

	log.Info("storage client ready",
		zap.String("driver", driver),
		zap.String("endpoint", b.Endpoint),
		zap.String("bucket", b.Bucket),
		zap.Bool("path_style", b.PathStyle),
	)
	return s, nil
}
