package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mafredri/cdp"
	"github.com/mafredri/cdp/devtool"
	cdpbrowser "github.com/mafredri/cdp/protocol/browser"
	"github.com/mafredri/cdp/protocol/page"
	"github.com/mafredri/cdp/protocol/runtime"
	"github.com/mafredri/cdp/rpcc"

	"urlsnap/internal/logger"
)

// Client drives a single page target over the DevTools protocol.
type Client struct {
	conn   *rpcc.Conn
	client *cdp.Client
	log    logger.Logger
}

// Attach connects to a page target on the DevTools endpoint, creating one
// when none exists.
func Attach(ctx context.Context, devtoolsURL string, l logger.Logger) (*Client, error) {
	if l == nil {
		l = logger.NewNop()
	}
	dt := devtool.New(devtoolsURL)
	target, err := dt.Get(ctx, devtool.Page)
	if err != nil {
		target, err = dt.Create(ctx)
		if err != nil {
			return nil, fmt.Errorf("no page target: %w", err)
		}
	}
	conn, err := rpcc.DialContext(ctx, target.WebSocketDebuggerURL)
	if err != nil {
		return nil, fmt.Errorf("dial target: %w", err)
	}
	c := cdp.NewClient(conn)
	if err := c.Page.Enable(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return &Client{conn: conn, client: c, log: l}, nil
}

// Detach closes the target connection.
func (c *Client) Detach() error { return c.conn.Close() }

// Navigate loads url in the attached target.
func (c *Client) Navigate(ctx context.Context, url string) error {
	_, err := c.client.Page.Navigate(ctx, page.NewNavigateArgs(url))
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	c.log.Debug("navigated", "url", url)
	return nil
}

// WaitVisible polls until selector resolves on the current document or the
// timeout elapses.
func (c *Client) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	expr := fmt.Sprintf("document.querySelector(%q) !== null", selector)
	deadline := time.Now().Add(timeout)
	for {
		rep, err := c.client.Runtime.Evaluate(ctx, runtime.NewEvaluateArgs(expr))
		if err == nil && rep.ExceptionDetails == nil && string(rep.Result.Value) == "true" {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("selector %s not visible after %s", selector, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// AllowDownloads routes browser downloads into dir instead of the profile
// default and enables download events.
func (c *Client) AllowDownloads(ctx context.Context, dir string) error {
	args := cdpbrowser.NewSetDownloadBehaviorArgs("allow").
		SetDownloadPath(dir).
		SetEventsEnabled(true)
	return c.client.Browser.SetDownloadBehavior(ctx, args)
}

// TriggerSave asks the extension to fetch every URL in one batch. The
// message shape is fixed by the extension's runtime listener.
func (c *Client) TriggerSave(ctx context.Context, urls []string) error {
	encoded, err := json.Marshal(urls)
	if err != nil {
		return err
	}
	if err := c.eval(ctx, `console.log("Starting downloads...");`); err != nil {
		return err
	}
	expr := fmt.Sprintf(`let res = browser.runtime.sendMessage({ method: "downloads.saveUrls", urls: %s });`, encoded)
	if err := c.eval(ctx, expr); err != nil {
		return err
	}
	c.log.Info("batch download triggered", "urls", len(urls))
	return nil
}

func (c *Client) eval(ctx context.Context, expr string) error {
	rep, err := c.client.Runtime.Evaluate(ctx, runtime.NewEvaluateArgs(expr))
	if err != nil {
		return err
	}
	if rep.ExceptionDetails != nil {
		return fmt.Errorf("evaluate: %s", rep.ExceptionDetails.Text)
	}
	return nil
}
