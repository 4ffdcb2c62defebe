package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/schoolsite/config"
	"github.com/cppla/schoolsite/utils"
)

// ConfigController serves site settings used by the public layout.
type ConfigController struct{}

func NewConfigController() *ConfigController { return &ConfigController{} }

// GetFooter returns the footer contact block.
func (c *ConfigController) GetFooter(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"about": cfg.FooterAbout,
		"contact": gin.H{
			"address": cfg.FooterAddress,
			"phone":   cfg.FooterPhone,
			"email":   cfg.FooterEmail,
		},
		"social": gin.H{
			"facebook": cfg.FooterFacebook,
			"youtube":  cfg.FooterYoutube,
		},
	})
}

// GetNotice returns the announcement bar content.
func (c *ConfigController) GetNotice(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"title": cfg.NoticeTitle,
		"html":  utils.SanitizeHTML(cfg.NoticeHTML),
	})
}
