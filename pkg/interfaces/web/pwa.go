package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"text/template"

	"github.com/labstack/echo/v4"
	"github.com/skip2/go-qrcode"

	"github.com/vsinha/pricelist/pkg/infrastructure/config"
)

const qrSize = 256

// iconSpec describes one generated PNG icon
type iconSpec struct {
	Path     string
	Size     int
	Maskable bool
}

var icons = []iconSpec{
	{Path: "/pwa-192x192.png", Size: 192},
	{Path: "/pwa-512x512.png", Size: 512},
	{Path: "/pwa-512x512-maskable.png", Size: 512, Maskable: true},
	{Path: "/apple-touch-icon.png", Size: 180},
	{Path: "/favicon.png", Size: 64},
}

// manifest is the web app manifest document
type manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description"`
	ThemeColor      string         `json:"theme_color"`
	BackgroundColor string         `json:"background_color"`
	Display         string         `json:"display"`
	StartURL        string         `json:"start_url"`
	Scope           string         `json:"scope"`
	Lang            string         `json:"lang"`
	Icons           []manifestIcon `json:"icons"`
}

type manifestIcon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose,omitempty"`
}

// cachePolicy is one runtime caching rule of the service worker
type cachePolicy struct {
	CacheName     string   `json:"cacheName"`
	Handler       string   `json:"handler"`
	Destinations  []string `json:"destinations"`
	MaxEntries    int      `json:"maxEntries"`
	MaxAgeSeconds int      `json:"maxAgeSeconds,omitempty"`
	Statuses      []int    `json:"statuses"`
}

var cachePolicies = []cachePolicy{
	{
		CacheName:     "pages",
		Handler:       "NetworkFirst",
		Destinations:  []string{"document"},
		MaxEntries:    50,
		MaxAgeSeconds: 60 * 60 * 24,
		Statuses:      []int{200},
	},
	{
		CacheName:    "static-resources",
		Handler:      "StaleWhileRevalidate",
		Destinations: []string{"style", "script", "worker"},
		MaxEntries:   100,
		Statuses:     []int{200},
	},
	{
		CacheName:     "images",
		Handler:       "CacheFirst",
		Destinations:  []string{"image"},
		MaxEntries:    100,
		MaxAgeSeconds: 60 * 60 * 24 * 30,
		Statuses:      []int{0, 200},
	},
}

// precacheURLs is the app shell installed with the service worker
var precacheURLs = []string{
	"/index.html",
	"/static/app.css",
	"/install.js",
	"/manifest.webmanifest",
	"/favicon.png",
	"/apple-touch-icon.png",
	"/pwa-192x192.png",
}

// assetStore renders the PWA files once and keeps them in memory
type assetStore struct {
	pwa config.PWAConfig

	once      sync.Once
	err       error
	manifest  []byte
	iconBytes map[string][]byte
}

func newAssetStore(pwa config.PWAConfig) *assetStore {
	return &assetStore{pwa: pwa}
}

func (a *assetStore) load() error {
	a.once.Do(func() {
		a.manifest, a.err = json.MarshalIndent(buildManifest(a.pwa), "", "  ")
		if a.err != nil {
			return
		}
		a.iconBytes = make(map[string][]byte, len(icons))
		for _, spec := range icons {
			data, err := renderIcon(spec.Size, spec.Maskable, a.pwa)
			if err != nil {
				a.err = fmt.Errorf("failed to render icon %s: %w", spec.Path, err)
				return
			}
			a.iconBytes[spec.Path] = data
		}
	})
	return a.err
}

func buildManifest(pwa config.PWAConfig) manifest {
	m := manifest{
		Name:            pwa.Name,
		ShortName:       pwa.ShortName,
		Description:     pwa.Description,
		ThemeColor:      pwa.ThemeColor,
		BackgroundColor: pwa.BackgroundColor,
		Display:         "standalone",
		StartURL:        "/",
		Scope:           "/",
		Lang:            "pt-BR",
	}
	for _, spec := range icons {
		if !strings.HasPrefix(spec.Path, "/pwa-") {
			continue
		}
		icon := manifestIcon{
			Src:   strings.TrimPrefix(spec.Path, "/"),
			Sizes: fmt.Sprintf("%dx%d", spec.Size, spec.Size),
			Type:  "image/png",
		}
		if spec.Maskable {
			icon.Purpose = "any maskable"
		}
		m.Icons = append(m.Icons, icon)
	}
	return m
}

// renderServiceWorker fills the worker template. The version ties cache
// names to one server build so stale shells are dropped on activation.
func renderServiceWorker(name, version string) ([]byte, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/sw.js.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse service worker template: %w", err)
	}

	encode := func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	}
	versionJSON, err := encode(version)
	if err != nil {
		return nil, err
	}
	precacheJSON, err := encode(precacheURLs)
	if err != nil {
		return nil, err
	}
	policiesJSON, err := encode(cachePolicies)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]string{
		"Name":     strings.ReplaceAll(name, "*/", ""),
		"Version":  versionJSON,
		"Precache": precacheJSON,
		"Policies": policiesJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render service worker: %w", err)
	}
	return buf.Bytes(), nil
}

// registerPWARoutes registers the manifest, worker and icons at root paths
// so the worker scope covers the whole application
func (s *Server) registerPWARoutes() {
	s.echo.GET("/manifest.webmanifest", s.handleManifest)
	s.echo.GET("/sw.js", s.handleServiceWorker)
	s.echo.GET("/install.js", s.handleInstallScript)
	s.echo.GET("/install/qr.png", s.handleInstallQR)
	s.echo.StaticFS("/static", staticFS())

	for _, spec := range icons {
		path := spec.Path
		s.echo.GET(path, func(c echo.Context) error {
			return s.handleIcon(c, path)
		})
	}
}

func (s *Server) handleManifest(c echo.Context) error {
	if err := s.assets.load(); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	return c.Blob(http.StatusOK, "application/manifest+json", s.assets.manifest)
}

func (s *Server) handleServiceWorker(c echo.Context) error {
	body, err := renderServiceWorker(s.opts.PWA.Name, s.opts.Version)
	if err != nil {
		return err
	}
	c.Response().Header().Set("Service-Worker-Allowed", "/")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	return c.Blob(http.StatusOK, "text/javascript; charset=utf-8", body)
}

func (s *Server) handleInstallScript(c echo.Context) error {
	body, err := templateFS.ReadFile("static/install.js")
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	return c.Blob(http.StatusOK, "text/javascript; charset=utf-8", body)
}

func (s *Server) handleIcon(c echo.Context, path string) error {
	if err := s.assets.load(); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=86400")
	return c.Blob(http.StatusOK, "image/png", s.assets.iconBytes[path])
}

// handleInstallQR encodes the public address of the app so a phone can open
// and install it. Without a configured public URL the request host is used.
func (s *Server) handleInstallQR(c echo.Context) error {
	target := s.opts.Server.PublicURL
	if target == "" {
		target = fmt.Sprintf("%s://%s/", c.Scheme(), c.Request().Host)
	}

	png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
	if err != nil {
		return fmt.Errorf("failed to encode install QR code: %w", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	return c.Blob(http.StatusOK, "image/png", png)
}
