// Package imagepipeline produces the fixed set of image variants
// (original, 256, 512, 1024) for a completed upload, encoding resized
// copies to JPEG and upserting their Image rows.
package imagepipeline

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	image2 "image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
	"gorm.io/gorm"

	"github.com/catalogforge/imgingest/internal/apperror"
	"github.com/catalogforge/imgingest/internal/config"
	"github.com/catalogforge/imgingest/internal/store"
	"github.com/catalogforge/imgingest/observability"
)

// BlobReaderWriter reads the assembled source blob and writes encoded
// variant blobs back into the upload's namespace.
type BlobReaderWriter interface {
	ReadBlob(uploadID, name string) (io.ReadCloser, error)
	PutBlob(uploadID, name string, source io.Reader) (string, error)
	Exists(path string) bool
}

// Pipeline produces Image rows for an upload's assembled source.
type Pipeline struct {
	blobs    BlobReaderWriter
	images   *store.ImageRepository
	uploads  *store.UploadRepository
	variants []config.Variant
	quality  int
}

func New(blobs BlobReaderWriter, images *store.ImageRepository, uploads *store.UploadRepository, variants []config.Variant, quality int) *Pipeline {
	return &Pipeline{blobs: blobs, images: images, uploads: uploads, variants: variants, quality: quality}
}

// Run executes the variant pipeline for uploadID against the
// assembled blob at sourcePath, transitioning the upload to complete
// on success or failed on any error so the caller (job runner) can
// retry.
func (p *Pipeline) Run(ctx context.Context, uploadID, sourcePath string) error {
	if err := p.runVariants(ctx, uploadID, sourcePath); err != nil {
		p.markFailed(ctx, uploadID)
		return err
	}
	return p.markComplete(ctx, uploadID)
}

func (p *Pipeline) runVariants(ctx context.Context, uploadID, sourcePath string) error {
	if !p.blobs.Exists(sourcePath) {
		return apperror.New(apperror.KindInternalIO, "assembled source blob does not exist")
	}

	rc, err := p.blobs.ReadBlob(uploadID, "original"+extOf(sourcePath))
	if err != nil {
		return apperror.Wrap(apperror.KindInternalIO, "open source blob", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return apperror.Wrap(apperror.KindInternalIO, "read source blob", err)
	}
	if len(raw) == 0 {
		return apperror.New(apperror.KindProcessingFailed, "source blob is empty")
	}

	mimeType := http.DetectContentType(raw)
	src, _, err := image2.Decode(bytes.NewReader(raw))
	if err != nil {
		return apperror.Wrap(apperror.KindProcessingFailed, "decode source image", err)
	}

	bounds := src.Bounds()
	srcChecksum := md5Hex(raw)
	if err := p.images.Upsert(ctx, &store.Image{
		UploadID: uploadID,
		Variant:  store.VariantOriginal,
		Path:     sourcePath,
		MIMEType: mimeType,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Checksum: srcChecksum,
	}); err != nil {
		return err
	}

	for _, v := range p.variants {
		variantStart := time.Now()
		w, h := longestSideTarget(bounds.Dx(), bounds.Dy(), v.LongestSide)
		resized := imaging.Resize(src, w, h, imaging.Lanczos)
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: p.quality}); err != nil {
			return apperror.Wrap(apperror.KindProcessingFailed, "encode variant "+v.Tag, err)
		}

		name := v.Tag + ".jpg"
		path, err := p.blobs.PutBlob(uploadID, name, bytes.NewReader(buf.Bytes()))
		if err != nil {
			return apperror.Wrap(apperror.KindInternalIO, "store variant "+v.Tag, err)
		}

		rb := resized.Bounds()
		if err := p.images.Upsert(ctx, &store.Image{
			UploadID: uploadID,
			Variant:  store.ImageVariant(v.Tag),
			Path:     path,
			MIMEType: "image/jpeg",
			Width:    rb.Dx(),
			Height:   rb.Dy(),
			Checksum: md5Hex(buf.Bytes()),
		}); err != nil {
			return err
		}
		observability.GetObserver().OnVariantEncoded(ctx, uploadID, v.Tag, rb.Dx(), rb.Dy(), time.Since(variantStart))
	}

	return nil
}

// longestSideTarget returns the (width, height) imaging.Resize should
// target so the longest side equals target, preserving aspect ratio,
// without ever enlarging the source (upsize=false).
func longestSideTarget(w, h, target int) (int, int) {
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= target {
		return w, h // never upsize
	}
	if w >= h {
		return target, 0 // imaging.Resize infers the other dimension when given 0
	}
	return 0, target
}

func (p *Pipeline) markComplete(ctx context.Context, uploadID string) error {
	return p.uploads.WithLock(ctx, uploadID, func(tx *gorm.DB, s *store.UploadSession) error {
		s.Status = store.StatusComplete
		return p.uploads.Save(tx, s)
	})
}

func (p *Pipeline) markFailed(ctx context.Context, uploadID string) {
	_ = p.uploads.WithLock(ctx, uploadID, func(tx *gorm.DB, s *store.UploadSession) error {
		s.Status = store.StatusFailed
		return p.uploads.Save(tx, s)
	})
}

func md5Hex(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

func extOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i:]
		}
		if path[i] == '/' {
			break
		}
	}
	return ""
}
