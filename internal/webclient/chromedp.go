package webclient

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/peternemser-ui/font-scanner-sub013/internal/interfaces"
)

// ChromeDPClient renders pages in a headless browser before snapshotting the
// DOM. Slower than nethttp, but sees script-built markup (consent banners,
// injected fonts) that the mobile and gdpr analyzers care about.
type ChromeDPClient struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	idleAfter   time.Duration
	logger      interfaces.Logger
}

// NewChromeDPClient starts a browser allocator shared by all fetches.
func NewChromeDPClient(idleAfter time.Duration, logger interfaces.Logger, opts ...chromedp.ExecAllocatorOption) (*ChromeDPClient, error) {
	if idleAfter <= 0 {
		idleAfter = 2 * time.Second
	}
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:], opts...)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	return &ChromeDPClient{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		idleAfter:   idleAfter,
		logger:      logger.With(interfaces.F("backend", "chromedp")),
	}, nil
}

// waitNetworkIdle closes the returned channel once no request has been in
// flight for idleAfter.
func waitNetworkIdle(ctx context.Context, idleAfter time.Duration) <-chan struct{} {
	idleChan := make(chan struct{})
	var activeReqs int32
	var timerMu sync.Mutex
	var timer *time.Timer
	var once sync.Once

	startTimer := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(idleAfter, func() {
			if atomic.LoadInt32(&activeReqs) == 0 {
				once.Do(func() { close(idleChan) })
			}
		})
	}
	startTimer()

	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&activeReqs, 1)
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if atomic.AddInt32(&activeReqs, -1) <= 0 {
				startTimer()
			}
		}
	})

	return idleChan
}

// Do navigates to req.URL, waits for the network to settle and returns the
// rendered outer HTML. Method and body are ignored; browser fetches are GETs.
func (c *ChromeDPClient) Do(ctx context.Context, req *Request) (*Response, error) {
	tabCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var dcancel context.CancelFunc
		tabCtx, dcancel = context.WithDeadline(tabCtx, deadline)
		defer dcancel()
	}

	idle := waitNetworkIdle(tabCtx, c.idleAfter)

	if err := chromedp.Run(tabCtx, network.Enable(), chromedp.Navigate(req.URL)); err != nil {
		c.logger.Warn("navigation failed",
			interfaces.F("url", req.URL),
			interfaces.F("error", err.Error()))
		return nil, err
	}

	select {
	case <-idle:
	case <-tabCtx.Done():
		return nil, tabCtx.Err()
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return nil, err
	}

	return &Response{
		Request:    req,
		Body:       []byte(html),
		Headers:    http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
		StatusCode: http.StatusOK,
		FetchedAt:  time.Now(),
	}, nil
}

func (c *ChromeDPClient) Close() error {
	c.allocCancel()
	return nil
}
