package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"

	"github.com/torqueline/partsource/pkg/errors"
)

// loginTimeout bounds one full login handshake attempt.
const loginTimeout = 60 * time.Second

// credentialMarkers are the cookie names that prove the login actually
// succeeded. The login page loads fine on bad credentials too; only the
// presence of at least one marker distinguishes an authenticated session.
var credentialMarkers = []string{"JSESSIONID", "mp_session", "mp_auth"}

// dialogDismissals are selectors for interstitials the marketplace shows
// after login (cookie banners, tour popups, announcement modals). Each is
// attempted independently and failures are ignored: a missing dialog must
// never abort the handshake.
var dialogDismissals = []string{
	`#onetrust-accept-btn-handler`,
	`button[aria-label="Close"]`,
	`.modal-dialog button.close`,
	`button.tour-skip`,
}

// BrowserHandshake logs into the marketplace with a headless browser and
// captures the session cookies. The browser process is a lazily created
// singleton; each Login runs in its own tab.
type BrowserHandshake struct {
	loginURL string
	username string
	password string
	logger   *log.Logger

	mu          sync.Mutex
	browserCtx  context.Context
	allocCancel context.CancelFunc
	ctxCancel   context.CancelFunc
}

// NewBrowserHandshake creates a browser-driven login handshake.
func NewBrowserHandshake(loginURL, username, password string, logger *log.Logger) *BrowserHandshake {
	if logger == nil {
		logger = log.Default()
	}
	return &BrowserHandshake{
		loginURL: loginURL,
		username: username,
		password: password,
		logger:   logger,
	}
}

// browser returns the singleton browser context, starting the browser on
// first use.
func (b *BrowserHandshake) browser() context.Context {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx == nil {
		allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(),
			chromedp.DefaultExecAllocatorOptions[:]...)
		browserCtx, ctxCancel := chromedp.NewContext(allocCtx)
		b.browserCtx = browserCtx
		b.allocCancel = allocCancel
		b.ctxCancel = ctxCancel
	}
	return b.browserCtx
}

// Login performs the interactive handshake: open the login page, submit the
// stored credentials, dismiss any interstitials, then capture cookies.
// Fails with AUTH_FAILED when no credential marker is present afterwards.
func (b *BrowserHandshake) Login(ctx context.Context) (Credential, error) {
	tab, cancelTab := chromedp.NewContext(b.browser())
	defer cancelTab()

	tab, cancelTimeout := context.WithTimeout(tab, loginTimeout)
	defer cancelTimeout()

	err := chromedp.Run(tab,
		chromedp.Navigate(b.loginURL),
		chromedp.WaitVisible(`input[name="username"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="username"]`, b.username, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="password"]`, b.password, chromedp.ByQuery),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
	)
	if err != nil {
		// Respect the caller's deadline distinctly from a page failure.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Credential{}, ctxErr
		}
		return Credential{}, errors.Wrap(errors.ErrCodeAuthFailed, err, "login page handshake failed")
	}

	b.dismissDialogs(tab)

	cookies, err := captureCookies(tab)
	if err != nil {
		return Credential{}, errors.Wrap(errors.ErrCodeAuthFailed, err, "cookie capture failed")
	}

	if !hasMarker(cookies) {
		return Credential{}, errors.New(errors.ErrCodeAuthFailed,
			"login did not establish a session credential (check username/password)")
	}

	return Credential{Cookies: cookies, Header: BuildHeader(cookies)}, nil
}

// dismissDialogs best-effort clicks through known interstitials. Every
// attempt is independently bounded and failures are swallowed.
func (b *BrowserHandshake) dismissDialogs(tab context.Context) {
	for _, sel := range dialogDismissals {
		attemptCtx, cancel := context.WithTimeout(tab, 2*time.Second)
		err := chromedp.Run(attemptCtx, chromedp.Click(sel, chromedp.ByQuery, chromedp.NodeVisible))
		cancel()
		if err != nil {
			b.logger.Debug("dialog not present", "selector", sel)
		}
	}
}

func captureCookies(tab context.Context) (map[string]string, error) {
	cookies := make(map[string]string)
	err := chromedp.Run(tab, chromedp.ActionFunc(func(ctx context.Context) error {
		raw, err := storage.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range raw {
			cookies[c.Name] = c.Value
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return cookies, nil
}

func hasMarker(cookies map[string]string) bool {
	for _, marker := range credentialMarkers {
		if _, ok := cookies[marker]; ok {
			return true
		}
	}
	return false
}

// Close shuts down the browser process if it was ever started.
func (b *BrowserHandshake) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctxCancel != nil {
		b.ctxCancel()
		b.ctxCancel = nil
	}
	if b.allocCancel != nil {
		b.allocCancel()
		b.allocCancel = nil
	}
	b.browserCtx = nil
	return nil
}

var _ Handshake = (*BrowserHandshake)(nil)
