package scraper

import (
	"context"
	"time"

	"github.com/go-rod/rod"
)

// scrollEpsilon tolerates sub-pixel layout jitter when comparing document
// heights between iterations.
const scrollEpsilon = 2.0

// scrollDriver abstracts the page operations the scroll loop needs, so the
// termination logic can be exercised against scripted height sequences.
type scrollDriver interface {
	// ScrollToBottom scrolls to the current document bottom.
	ScrollToBottom() error

	// DocumentHeight returns the current scrollHeight of the document.
	DocumentHeight() (float64, error)
}

// runScrollLoop performs up to maxAttempts scroll-to-bottom passes, waiting
// delay between each so lazy-loaded content can arrive. It stops at the
// first iteration whose post-scroll document height shows no growth over the
// previous measurement: repeated identical heights reliably mean
// end-of-content on the sites this targets, so there are no grace
// iterations. Returns the number of iterations that ran.
func runScrollLoop(ctx context.Context, d scrollDriver, maxAttempts int, delay time.Duration) (int, error) {
	lastHeight, err := d.DocumentHeight()
	if err != nil {
		return 0, err
	}

	iterations := 0
	for i := 0; i < maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return iterations, err
		}
		if err := d.ScrollToBottom(); err != nil {
			return iterations, err
		}
		if err := sleepCtx(ctx, delay); err != nil {
			return iterations, err
		}

		height, err := d.DocumentHeight()
		if err != nil {
			return iterations, err
		}
		iterations++

		if height-lastHeight <= scrollEpsilon {
			break
		}
		lastHeight = height
	}
	return iterations, nil
}

// rodScrollDriver drives a live Rod page.
type rodScrollDriver struct {
	page *rod.Page
}

func (d *rodScrollDriver) ScrollToBottom() error {
	_, err := d.page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	return err
}

func (d *rodScrollDriver) DocumentHeight() (float64, error) {
	res, err := d.page.Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return 0, err
	}
	return res.Value.Num(), nil
}
