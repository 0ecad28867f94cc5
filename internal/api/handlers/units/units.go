package units

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"weekly-eats/internal/core/units"
	"weekly-eats/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// ConvertResponse 換算結果
type ConvertResponse struct {
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// ListUnits GET /api/v1/units
func ListUnits(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"units": units.Units(),
	})
}

// Convert GET /api/v1/units/convert?quantity=&from=&to=
func Convert(c *gin.Context) {
	quantity, err := parseQuantity(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	from, to := strings.TrimSpace(c.Query("from")), strings.TrimSpace(c.Query("to"))
	if from == "" || to == "" {
		common.RespondError(c, common.ErrInvalidRequest.Wrap(fmt.Errorf("from and to are required")))
		return
	}

	converted, ok := units.TryConvert(quantity, from, to)
	if !ok {
		common.RespondError(c, common.ErrUnprocessable.Wrap(fmt.Errorf("cannot convert %s to %s", from, to)))
		return
	}

	c.JSON(http.StatusOK, ConvertResponse{Quantity: converted, Unit: to})
}

// BestUnit GET /api/v1/units/best?quantity=&unit=
func BestUnit(c *gin.Context) {
	quantity, err := parseQuantity(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	unit := strings.TrimSpace(c.Query("unit"))
	if unit == "" {
		common.RespondError(c, common.ErrInvalidRequest.Wrap(fmt.Errorf("unit is required")))
		return
	}

	q, u := units.PickBestUnit(quantity, unit)
	c.JSON(http.StatusOK, ConvertResponse{Quantity: units.RoundQuantity(q), Unit: u})
}

func parseQuantity(c *gin.Context) (float64, error) {
	raw := c.Query("quantity")
	if raw == "" {
		return 0, common.ErrInvalidRequest.Wrap(fmt.Errorf("quantity is required"))
	}
	q, err := strconv.ParseFloat(raw, 64)
	if err != nil || q < 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return 0, common.ErrInvalidRequest.Wrap(fmt.Errorf("invalid quantity %q", raw))
	}
	return q, nil
}
