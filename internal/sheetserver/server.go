package sheetserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tflegends/legends/internal/constants"
	"github.com/tflegends/legends/internal/game"
	"github.com/tflegends/legends/internal/logging"
)

// Server implements the spreadsheet-style record store contract: every
// table supports a full list, an array insert and an array of partial
// patches merged by id. It deliberately validates nothing about game
// semantics — clients own the rules — with one exception: a battle
// patch must carry the revision it was computed against, and loses with
// 409 once another client has advanced it.
type Server struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Server {
	return &Server{db: db}
}

// Router builds the gin engine serving the store API.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()
	api := router.Group(constants.RouteAPIPrefix)
	{
		api.GET(constants.RouteTable, s.listTable)
		api.POST(constants.RouteTable, s.createRows)
		api.PUT(constants.RouteTable, s.patchRows)
	}
	return router
}

// patchable lists the columns a PUT may merge, per table. Unknown keys
// are dropped so a sloppy client cannot break the schema.
var patchable = map[string]map[string]bool{
	constants.TableUsers: {
		"username": true, "password": true, "cards": true, "coins": true,
		"online": true, "wins": true, "losses": true,
	},
	constants.TableCards: {
		"name": true, "faction": true, "attack": true, "health": true,
		"defense": true, "rarity": true, "bonus": true, "url": true,
	},
	constants.TableBattles: {
		"player1": true, "player2": true,
		"p1_hand": true, "p1_remaining": true, "p1_field": true, "p1_health": true,
		"p2_hand": true, "p2_remaining": true, "p2_field": true, "p2_health": true,
		"turn": true, "log": true, "status": true, "winner": true,
		"started_at": true, "ended_at": true,
	},
}

func (s *Server) listTable(c *gin.Context) {
	var (
		table = c.Param("table")
		err   error
	)
	switch table {
	case constants.TableUsers:
		var rows []game.User
		err = s.db.Find(&rows).Error
		if err == nil {
			c.JSON(http.StatusOK, gin.H{constants.JSONKeyData: rows})
			return
		}
	case constants.TableCards:
		var rows []game.Card
		err = s.db.Find(&rows).Error
		if err == nil {
			c.JSON(http.StatusOK, gin.H{constants.JSONKeyData: rows})
			return
		}
	case constants.TableBattles:
		var rows []game.Battle
		err = s.db.Find(&rows).Error
		if err == nil {
			c.JSON(http.StatusOK, gin.H{constants.JSONKeyData: rows})
			return
		}
	default:
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrUnknownTable})
		return
	}
	logging.Error("list failed", err, logging.Fields{constants.LogFieldTable: table})
	c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedList})
}

func (s *Server) createRows(c *gin.Context) {
	table := c.Param("table")
	switch table {
	case constants.TableUsers:
		var rows []game.User
		if err := c.ShouldBindJSON(&rows); err != nil || len(rows) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidPayload})
			return
		}
		for i := range rows {
			if rows[i].ID == "" {
				rows[i].ID = uuid.NewString()
			}
		}
		s.insert(c, table, &rows)
	case constants.TableCards:
		var rows []game.Card
		if err := c.ShouldBindJSON(&rows); err != nil || len(rows) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidPayload})
			return
		}
		for i := range rows {
			if rows[i].ID == "" {
				rows[i].ID = uuid.NewString()
			}
		}
		s.insert(c, table, &rows)
	case constants.TableBattles:
		var rows []game.Battle
		if err := c.ShouldBindJSON(&rows); err != nil || len(rows) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidPayload})
			return
		}
		for i := range rows {
			if rows[i].ID == "" {
				rows[i].ID = uuid.NewString()
			}
			rows[i].Revision = 0
		}
		s.insert(c, table, &rows)
	default:
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrUnknownTable})
	}
}

func (s *Server) insert(c *gin.Context, table string, rows interface{}) {
	if err := s.db.Create(rows).Error; err != nil {
		logging.Error("insert failed", err, logging.Fields{constants.LogFieldTable: table})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedCreate})
		return
	}
	c.JSON(http.StatusCreated, gin.H{constants.JSONKeyData: rows})
}

func (s *Server) patchRows(c *gin.Context) {
	table := c.Param("table")
	allowed, ok := patchable[table]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrUnknownTable})
		return
	}
	var rows []map[string]interface{}
	if err := c.ShouldBindJSON(&rows); err != nil || len(rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidPayload})
		return
	}

	for _, row := range rows {
		id, _ := row["id"].(string)
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrMissingRecordID})
			return
		}
		updates := make(map[string]interface{}, len(row))
		for k, v := range row {
			if allowed[k] {
				updates[k] = v
			}
		}
		var err error
		if table == constants.TableBattles {
			err = s.patchBattle(id, row, updates)
		} else {
			err = s.patchRow(table, id, updates)
		}
		switch err {
		case nil:
		case errStale:
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrRevisionStale})
			return
		case gorm.ErrRecordNotFound:
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrRecordNotFound})
			return
		default:
			logging.Error("patch failed", err, logging.Fields{constants.LogFieldTable: table})
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedPatch})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "ok"})
}

func (s *Server) patchRow(table, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	var model interface{}
	switch table {
	case constants.TableUsers:
		model = &game.User{}
	case constants.TableCards:
		model = &game.Card{}
	}
	res := s.db.Model(model).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
