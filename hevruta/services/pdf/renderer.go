package pdf

import (
	"context"

	"hevruta/hevruta/utils/apperrors"
	"hevruta/hevruta/utils/logging"

	"github.com/playwright-community/playwright-go"
)

// Renderer converts editor HTML to PDF through headless Chromium. One
// Playwright driver lives for the process; a fresh browser is launched
// per render so jobs stay isolated.
type Renderer struct {
	pw   *playwright.Playwright
	opts Options
}

func NewRenderer(opts Options) (*Renderer, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, err
	}
	return &Renderer{pw: pw, opts: opts}, nil
}

func (r *Renderer) Close() {
	if r.pw != nil {
		r.pw.Stop()
	}
}

// Render sanitizes the submitted HTML, wraps it in the RTL print shell
// and prints it. Returns the PDF bytes and the resolved document title.
func (r *Renderer) Render(ctx context.Context, rawHTML, fallbackTitle string) ([]byte, string, error) {
	defer logging.LogDuration(ctx, "pdf_render")()

	title := ExtractTitle(rawHTML, fallbackTitle)
	if title == "" {
		title = "מסמך"
	}
	body := SanitizeHTML(rawHTML)
	if body == "" {
		return nil, "", apperrors.Validation("empty document")
	}
	doc := printShell(body, title)

	browser, err := r.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--disable-gpu",
			"--no-sandbox",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		return nil, "", apperrors.External("browser launch failed", err)
	}
	defer browser.Close()

	bctx, err := browser.NewContext()
	if err != nil {
		return nil, "", apperrors.External("browser context failed", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		return nil, "", apperrors.External("browser page failed", err)
	}

	err = page.SetContent(doc, playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(float64(r.opts.NavTimeoutMs)),
	})
	if err != nil {
		return nil, "", apperrors.External("document load failed", err)
	}

	pdfOpts := playwright.PagePdfOptions{
		Format:          playwright.String(r.opts.Format),
		PrintBackground: playwright.Bool(r.opts.PrintBackground),
		Margin: &playwright.Margin{
			Top:    playwright.String(r.opts.MarginTop),
			Bottom: playwright.String(r.opts.MarginBottom),
			Left:   playwright.String(r.opts.MarginLeft),
			Right:  playwright.String(r.opts.MarginRight),
		},
	}
	if r.opts.FooterTemplate != "" {
		pdfOpts.DisplayHeaderFooter = playwright.Bool(true)
		pdfOpts.FooterTemplate = playwright.String(r.opts.FooterTemplate)
		pdfOpts.HeaderTemplate = playwright.String("<span></span>")
	}

	data, err := page.PDF(pdfOpts)
	if err != nil {
		return nil, "", apperrors.External("pdf print failed", err)
	}
	return data, title, nil
}
