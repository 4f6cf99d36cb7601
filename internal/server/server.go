package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ropewar/internal/combat"
	"ropewar/internal/sim"
)

type templateView struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name,omitempty"`
	Side        string         `json:"side"`
	Skill       string         `json:"skill"`
	Cost        int            `json:"cost,omitempty"`
	Levels      []combat.Stats `json:"levels"`
}

// New wires the simulation routes onto a fresh engine. The campaign routes
// are only mounted when camp is non-nil.
func New(runner *sim.Runner, camp *sim.Campaign) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	{
		v1.GET("/templates", templatesHandler(runner))
		v1.GET("/stages/:stage/layout", layoutHandler(runner))
		v1.POST("/simulate", simulateHandler(runner))
		if camp != nil {
			v1.GET("/campaign", campaignHandler(camp))
			v1.POST("/campaign/round", roundHandler(camp))
			v1.POST("/campaign/reset", resetHandler(camp))
		}
	}
	return r
}

func templatesHandler(runner *sim.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		view := func(side combat.Side) []templateView {
			var out []templateView
			for _, t := range runner.Catalog.Templates(side) {
				out = append(out, templateView{
					Name: t.Name, DisplayName: t.DisplayName, Side: t.Side.String(),
					Skill: t.Skill.String(), Cost: t.Cost, Levels: t.Levels,
				})
			}
			return out
		}
		c.JSON(http.StatusOK, gin.H{
			"characters": view(combat.Allied),
			"enemies":    view(combat.Enemy),
		})
	}
}

func layoutHandler(runner *sim.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		stageNo, err := strconv.Atoi(c.Param("stage"))
		if err != nil || stageNo < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stage must be a positive integer"})
			return
		}
		seed, err := strconv.ParseInt(c.DefaultQuery("seed", "1"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "seed must be an integer"})
			return
		}
		layouts, err := runner.Layout(stageNo, seed)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"stage": stageNo, "seed": seed, "ropes": layouts})
	}
}

func simulateHandler(runner *sim.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in sim.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		record := c.Query("record") == "true"
		res, err := runner.Run(in, record)
		if err != nil {
			status := http.StatusInternalServerError
			if isInputError(err) {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func campaignHandler(camp *sim.Campaign) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, camp.Deck())
	}
}

// roundHandler plays the current stage. ?choice picks the offered benefit
// (default 0, negative to skip).
func roundHandler(camp *sim.Campaign) gin.HandlerFunc {
	return func(c *gin.Context) {
		choice, err := strconv.Atoi(c.DefaultQuery("choice", "0"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "choice must be an integer"})
			return
		}
		var in sim.Input
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&in); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		round, err := camp.Play(in, c.Query("record") == "true", func([]sim.Benefit) int { return choice })
		if err != nil {
			status := http.StatusInternalServerError
			if isInputError(err) {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, round)
	}
}

func resetHandler(camp *sim.Campaign) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := camp.Reset(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, camp.Deck())
	}
}

func isInputError(err error) bool {
	for _, target := range []error{
		sim.ErrBadInput, combat.ErrTemplateNotFound, combat.ErrInvalidLevel,
		combat.ErrSlotOutOfRange, combat.ErrSlotOccupied, combat.ErrSideMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
