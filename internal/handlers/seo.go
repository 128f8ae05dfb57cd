package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"recipebox/internal/logging"
	"recipebox/internal/models"
	"recipebox/internal/services"
	"recipebox/internal/utils"

	"github.com/gin-gonic/gin"
)

// feedSize is how many recipes the RSS feed carries.
const feedSize = 20

type SEOHandler struct {
	recipes *services.RecipeService
	siteURL string
	log     logging.Logger
}

func NewSEOHandler(recipes *services.RecipeService, siteURL string, log logging.Logger) *SEOHandler {
	return &SEOHandler{recipes: recipes, siteURL: siteURL, log: log}
}

func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

# Account pages
Disallow: /login
Disallow: /register
Disallow: /logout
Disallow: /account/

# Recipe pages require a login
Disallow: /recipe/

Sitemap: %s/feed.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description rssHTML `xml:"description"`
	Author      string  `xml:"author"`
	PubDate     string  `xml:"pubDate"`
	GUID        rssGUID `xml:"guid"`
}

type rssHTML struct {
	Body string `xml:",cdata"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// RSSFeed lists the latest recipes as an RSS 2.0 feed.
func (h *SEOHandler) RSSFeed(c *gin.Context) {
	recipes, err := h.recipes.LatestRecipes(c.Request.Context(), feedSize)
	if err != nil {
		h.log.Error(c.Request.Context(), "failed to build feed", "error", err)
		c.String(http.StatusInternalServerError, "feed unavailable")
		return
	}

	doc := rssDoc{
		Version: "2.0",
		Channel: rssChannel{
			Title:         "RecipeBox",
			Link:          h.siteURL + "/",
			Description:   "The latest recipes shared on RecipeBox",
			Language:      "en",
			LastBuildDate: time.Now().Format(time.RFC1123Z),
			Items:         make([]rssItem, 0, len(recipes)),
		},
	}
	for _, r := range recipes {
		link := h.siteURL + recipePath(r.ID)
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       r.Title,
			Link:        link,
			Description: rssHTML{Body: string(utils.RenderMarkdown(feedSummary(r)))},
			Author:      r.Author.Username,
			PubDate:     r.CreatedAt.Format(time.RFC1123Z),
			GUID:        rssGUID{IsPermaLink: true, Value: link},
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		h.log.Error(c.Request.Context(), "failed to encode feed", "error", err)
		c.String(http.StatusInternalServerError, "feed unavailable")
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", append([]byte(xml.Header), out...))
}

// feedSummary prefers the description and falls back to the ingredients.
func feedSummary(r models.Recipe) string {
	if r.Description != "" {
		return r.Description
	}
	return r.Ingredients
}
