// Package source resolves input URIs to readable event store streams.
//
// Supported forms:
//
//	events.objs            local path
//	file:events.objs       local path
//	file:///data/ev.objs   local path
//	s3://bucket/key        S3 object (AWS default credential chain)
//	http(s)://host/path    HTTP GET
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/justapithecus/objext/iox"
	"github.com/justapithecus/objext/lode"
)

// ErrUnsupportedScheme is returned for URIs with an unknown scheme.
var ErrUnsupportedScheme = errors.New("unsupported input scheme")

// Opener opens an input URI for reading.
type Opener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// S3API is the subset of the S3 client used for s3:// inputs.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Resolver opens local, S3 and HTTP inputs.
type Resolver struct {
	// HTTPClient is used for http(s) inputs. Nil uses http.DefaultClient.
	HTTPClient *http.Client
	// S3 is used for s3:// inputs. Nil builds a client from S3Config on first use.
	S3 S3API
	// S3Config carries region and endpoint overrides for the lazy S3 client.
	S3Config lode.S3Config

	s3Once sync.Once
	s3Err  error
}

// NewResolver creates a resolver with default clients.
func NewResolver(s3cfg lode.S3Config) *Resolver {
	return &Resolver{S3Config: s3cfg}
}

// Scheme returns the URI scheme: "file", "s3", "http", "https" or the
// unrecognized prefix. Plain paths report "file".
func Scheme(uri string) string {
	if strings.HasPrefix(uri, "file:") {
		return "file"
	}
	if i := strings.Index(uri, "://"); i > 0 {
		return strings.ToLower(uri[:i])
	}
	return "file"
}

// Open opens uri for reading. Failures are returned as *OpenError.
func (r *Resolver) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	var (
		rc  io.ReadCloser
		err error
	)
	switch Scheme(uri) {
	case "file":
		rc, err = os.Open(localPath(uri))
	case "s3":
		rc, err = r.openS3(ctx, uri)
	case "http", "https":
		rc, err = r.openHTTP(ctx, uri)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedScheme, Scheme(uri))
	}
	if err != nil {
		if errors.Is(err, ErrUnsupportedScheme) {
			return nil, &OpenError{URI: uri, Err: err}
		}
		return nil, &OpenError{URI: uri, Kind: lode.Classify(err), Err: lode.WrapOpenError(err, uri)}
	}
	return rc, nil
}

// localPath strips a file: or file:// prefix.
func localPath(uri string) string {
	p := strings.TrimPrefix(uri, "file:")
	if strings.HasPrefix(p, "//") {
		p = p[2:]
	}
	return p
}

func (r *Resolver) openS3(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key := lode.ParseS3Path(uri)
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("s3 uri must be s3://bucket/key, got %q", uri)
	}

	r.s3Once.Do(func() {
		if r.S3 != nil {
			return
		}
		client, err := lode.NewS3API(ctx, r.S3Config)
		if err != nil {
			r.s3Err = err
			return
		}
		r.S3 = client
	})
	if r.s3Err != nil {
		return nil, r.s3Err
	}

	out, err := r.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

func (r *Resolver) openHTTP(ctx context.Context, uri string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	client := r.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		iox.DiscardClose(resp.Body)
		return nil, fmt.Errorf("GET %s: unexpected status %d", uri, resp.StatusCode)
	}
	return resp.Body, nil
}

// OpenError is a failure to open an input. Kind is the lode storage
// classification of the cause, nil for unsupported schemes; classified
// causes are wrapped in a *lode.StorageError with op "open".
type OpenError struct {
	URI  string
	Kind error
	Err  error
}

// Error implements error. Classified causes already name the input.
func (e *OpenError) Error() string {
	if e.Kind != nil {
		return fmt.Sprintf("input: %v", e.Err)
	}
	return fmt.Sprintf("open input %s: %v", e.URI, e.Err)
}

// Unwrap returns the underlying cause.
func (e *OpenError) Unwrap() error {
	return e.Err
}

// Is matches the classification kind.
func (e *OpenError) Is(target error) bool {
	return e.Kind != nil && errors.Is(e.Kind, target)
}

// Verify Resolver implements Opener.
var _ Opener = (*Resolver)(nil)
