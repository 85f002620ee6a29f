package rodview

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-rod/rod/lib/proto"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ExportPDF prints the currently displayed document to a PDF file. The
// output is validated with pdfcpu before it is written.
func (s *Surface) ExportPDF(ctx context.Context, path string) error {
	r, err := s.page.Context(ctx).PDF(&proto.PagePrintToPDF{
		PrintBackground: true,
	})
	if err != nil {
		return fmt.Errorf("rodview: print to pdf: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("rodview: read pdf stream: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return fmt.Errorf("rodview: validate pdf: %w", err)
	}
	s.logger.Info("rodview: exporting pdf", "path", path, "pages", pdfCtx.PageCount)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("rodview: write pdf: %w", err)
	}
	return nil
}
