package server

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/etnz/folio"
	"github.com/etnz/folio/news"
	"github.com/etnz/folio/renderer"
	"github.com/gin-gonic/gin"
)

// pageView is the data of page.html. Markdown sections are converted to HTML beforehand.
type pageView struct {
	Title         string
	Layout        string // auto, table or cards
	Dashboard     bool   // show the dashboard controls
	Percent       bool
	PercentToggle string
	Busy          bool
	Header        template.HTML
	Table         template.HTML
	Cards         template.HTML
	Footer        template.HTML
}

// section is a markdown fragment rendered into a pageView field.
type section struct {
	dst *template.HTML
	md  string
}

func (sec section) render() (err error) {
	*sec.dst, err = markdown(sec.md)
	return err
}

func (s *Server) dashboard(c *gin.Context) {
	layout, err := renderer.ParseLayout(c.Query("layout"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	percent := c.Query("percent") == "1"

	state := s.refresher.State()
	if !state.Loaded() && state.Err == nil {
		s.start(folio.Initial)
	}

	opts := renderer.Options{Percent: percent, Links: true}
	view := pageView{
		Title:         "Portfolio",
		Layout:        layout.String(),
		Dashboard:     true,
		Percent:       percent,
		PercentToggle: toggleQuery(c.Request.URL, "percent"),
		Busy:          s.refresher.Busy(),
	}

	sections := []section{
		{&view.Header, renderer.RenderTitle(state, opts)},
	}
	if state.Loaded() {
		if layout != renderer.Cards {
			opts.Layout = renderer.Table
			sections = append(sections, section{&view.Table, renderer.RenderHoldings(state, opts)})
		}
		if layout != renderer.Table {
			opts.Layout = renderer.Cards
			sections = append(sections, section{&view.Cards, renderer.RenderHoldings(state, opts)})
		}
		sections = append(sections, section{&view.Footer, renderer.RenderSummary(state, opts)})
	}

	for _, sec := range sections {
		if err := sec.render(); err != nil {
			s.logger.Error().Err(err).Msg("rendering dashboard")
			c.String(http.StatusInternalServerError, "rendering error")
			return
		}
	}
	c.HTML(http.StatusOK, "page.html", view)
}

// refreshPage starts a manual refresh and goes back to the dashboard.
func (s *Server) refreshPage(c *gin.Context) {
	s.start(folio.Manual)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) newsPage(c *gin.Context) {
	digest, err := s.news.Headlines(c.Request.Context(), s.refresher.Registry().Holdings)
	if err != nil {
		s.logger.Warn().Err(err).Msg("news unavailable")
		digest = news.PlaceholderText
	}
	h, err := markdown(renderer.RenderNews(digest))
	if err != nil {
		s.logger.Error().Err(err).Msg("rendering news")
		c.String(http.StatusInternalServerError, "rendering error")
		return
	}
	c.HTML(http.StatusOK, "page.html", pageView{Title: "News", Layout: renderer.Table.String(), Header: h})
}

// stock relays the chart document of a ticker.
func (s *Server) stock(c *gin.Context) {
	symbol := c.Param("symbol")
	if !symbolPattern.MatchString(symbol) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid symbol"})
		return
	}
	body, err := s.charts.Chart(c.Request.Context(), symbol)
	if err != nil {
		s.logger.Error().Str("symbol", symbol).Err(err).Msg("stock relay failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stock data"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// exchange relays the chart document of the exchange rate.
func (s *Server) exchange(c *gin.Context) {
	body, err := s.charts.ExchangeChart(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("exchange relay failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch exchange rate"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// portfolio returns the last published state.
func (s *Server) portfolio(c *gin.Context) {
	state := s.refresher.State()
	holdings := state.Holdings
	if holdings == nil {
		holdings = []folio.ValuedHolding{}
	}
	body := gin.H{
		"id":            state.ID,
		"loading":       !state.Loaded(),
		"busy":          s.refresher.Busy(),
		"localCurrency": state.LocalCurrency,
		"holdings":      holdings,
		"rate":          state.Rate,
		"rateFallback":  state.RateFallback,
	}
	if state.Loaded() {
		body["trigger"] = state.Trigger.String()
		body["updatedAt"] = state.UpdatedAt
		body["summary"] = state.Summary
	}
	if state.Err != nil {
		body["error"] = state.Err.Error()
	}
	c.JSON(http.StatusOK, body)
}

// refresh starts a cycle. The "trigger" query parameter may be "pull", it defaults to manual.
func (s *Server) refresh(c *gin.Context) {
	trigger := folio.Manual
	if c.Query("trigger") == "pull" {
		trigger = folio.Pull
	}
	if !s.start(trigger) {
		c.JSON(http.StatusOK, gin.H{"started": false})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"started": true})
}

// markdown converts a rendered page section to HTML.
func markdown(md string) (template.HTML, error) {
	h, err := renderer.HTML(md)
	if err != nil {
		return "", err
	}
	return template.HTML(h), nil
}

// toggleQuery returns the current address with the boolean parameter key flipped.
func toggleQuery(u *url.URL, key string) string {
	q := u.Query()
	if q.Get(key) == "1" {
		q.Del(key)
	} else {
		q.Set(key, "1")
	}
	if len(q) == 0 {
		return u.Path
	}
	return u.Path + "?" + q.Encode()
}
