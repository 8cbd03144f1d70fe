package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-SalonService/pkg/types"
)

// Input параметры создания записи
type Input struct {
	ClientID  int64
	MasterID  int64
	ServiceID int64
	Date      time.Time
	StartTime types.TimeString
}
