// internal/handler/control_handler.go
package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mcintosh-service/internal/driver/mcintosh"
	"mcintosh-service/internal/model"
	"mcintosh-service/internal/service"
	"mcintosh-service/internal/utils"
	"mcintosh-service/pkg/driver"
)

// ControlHandler turns HTTP requests into processor commands. Every command
// that changes state runs through the operation service and is audited.
type ControlHandler struct {
	deviceService    *service.DeviceService
	operationService *service.OperationService
	logger           *utils.ServiceLogger
}

// NewControlHandler creates a new control handler
func NewControlHandler(
	deviceService *service.DeviceService,
	operationService *service.OperationService,
	logger *zap.Logger,
) *ControlHandler {
	return &ControlHandler{
		deviceService:    deviceService,
		operationService: operationService,
		logger:           utils.NewServiceLogger(logger, "control-handler"),
	}
}

// RegisterRoutes registers control routes
func (h *ControlHandler) RegisterRoutes(router *gin.RouterGroup) {
	device := router.Group("/device")
	{
		device.POST("/power", h.SetPower)

		device.PUT("/volume", h.SetVolume)
		device.POST("/volume/up", h.VolumeUp)
		device.POST("/volume/down", h.VolumeDown)
		device.GET("/volume/max", h.GetMaxVolume)
		device.POST("/mute", h.SetMute)

		device.PUT("/source", h.SetSource)
		device.POST("/source/next", h.NextSource)
		device.POST("/source/previous", h.PreviousSource)
		device.GET("/sources", h.ListSources)
		device.GET("/sources/:index", h.GetSource)

		device.PUT("/loudness", h.SetLoudness)

		device.PUT("/trims/:channel", h.SetTrim)
		device.POST("/trims/:channel/up", h.TrimUp)
		device.POST("/trims/:channel/down", h.TrimDown)

		device.PUT("/lipsync", h.SetLipsync)
		device.POST("/lipsync/up", h.LipsyncUp)
		device.POST("/lipsync/down", h.LipsyncDown)
		device.GET("/lipsync/range", h.GetLipsyncRange)

		zone2 := device.Group("/zone2")
		{
			zone2.POST("/power", h.SetZone2Power)
			zone2.PUT("/volume", h.SetZone2Volume)
			zone2.POST("/volume/up", h.Zone2VolumeUp)
			zone2.POST("/volume/down", h.Zone2VolumeDown)
			zone2.POST("/mute", h.SetZone2Mute)
			zone2.PUT("/source", h.SetZone2Source)
			zone2.POST("/source/next", h.NextZone2Source)
			zone2.POST("/source/previous", h.PreviousZone2Source)
		}
	}
}

// Request bodies

// SwitchRequest turns a feature on, off or toggles it
type SwitchRequest struct {
	Action string `json:"action" binding:"required,oneof=on off toggle"`
}

// LevelRequest sets an absolute volume level
type LevelRequest struct {
	Level *int `json:"level" binding:"required"`
}

// StepRequest adjusts a level; a zero amount sends a single step
type StepRequest struct {
	Amount int `json:"amount" binding:"min=0,max=99"`
}

// SourceRequest selects an input by index
type SourceRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

// LoudnessRequest enables or disables loudness compensation
type LoudnessRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// TrimRequest sets a trim either in wire units (tenths of a dB) or in dB
type TrimRequest struct {
	Level *int             `json:"level"`
	DB    *decimal.Decimal `json:"db"`
}

// LipsyncRequest sets the audio delay
type LipsyncRequest struct {
	Value *int `json:"value" binding:"required"`
}

// Power

// SetPower switches the main zone
// @Summary Set power
// @Description Turn the processor on, off, or toggle it
// @Tags Control
// @Accept json
// @Produce json
// @Param request body SwitchRequest true "Power action"
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 503 {object} utils.APIResponse "Processor not connected"
// @Failure 504 {object} utils.APIResponse "Processor did not answer"
// @Router /device/power [post]
func (h *ControlHandler) SetPower(c *gin.Context) {
	h.switchCommand(c, model.OperationTypePower, "power", h.processor().Power(), true)
}

// Volume

// SetVolume sets the main zone volume
// @Summary Set volume
// @Description Set the main zone volume; values outside 0-99 are clamped
// @Tags Control
// @Accept json
// @Produce json
// @Param request body LevelRequest true "Volume level"
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Router /device/volume [put]
func (h *ControlHandler) SetVolume(c *gin.Context) {
	h.levelCommand(c, model.OperationTypeVolume, "volume", h.processor().Volume(), true)
}

// VolumeUp raises the main zone volume
// @Summary Volume up
// @Tags Control
// @Accept json
// @Produce json
// @Param request body StepRequest false "Step amount"
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Router /device/volume/up [post]
func (h *ControlHandler) VolumeUp(c *gin.Context) {
	h.stepCommand(c, model.OperationTypeVolume, "volume", h.processor().Volume(), true, true)
}

// VolumeDown lowers the main zone volume
// @Summary Volume down
// @Tags Control
// @Accept json
// @Produce json
// @Param request body StepRequest false "Step amount"
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Router /device/volume/down [post]
func (h *ControlHandler) VolumeDown(c *gin.Context) {
	h.stepCommand(c, model.OperationTypeVolume, "volume", h.processor().Volume(), false, true)
}

// GetMaxVolume reads the configured volume limit
// @Summary Get maximum volume
// @Tags Control
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{max_volume=int}} "Maximum volume retrieved"
// @Failure 400 {object} utils.APIResponse "Not supported by this model"
// @Router /device/volume/max [get]
func (h *ControlHandler) GetMaxVolume(c *gin.Context) {
	if !h.capabilities().MaxVolumeQuery {
		respondError(c, "Maximum volume query not supported", errUnsupportedFeature)
		return
	}
	maxVolume, err := h.processor().Volume().Max(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to read maximum volume", h.deviceService.Redact(err))
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Maximum volume retrieved", gin.H{"max_volume": maxVolume})
}

// SetMute mutes or unmutes the main zone
// @Summary Set mute
// @Tags Control
// @Accept json
// @Produce json
// @Param request body SwitchRequest true "Mute action"
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Router /device/mute [post]
func (h *ControlHandler) SetMute(c *gin.Context) {
	h.switchCommand(c, model.OperationTypeMute, "mute", h.processor().Mute(), true)
}

// Source

// SetSource selects a main zone input
// @Summary Set source
// @Description Select an input by index; indexes outside the known table are still sent
// @Tags Control
// @Accept json
// @Produce json
// @Param request body SourceRequest true "Source index"
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Router /device/source [put]
func (h *ControlHandler) SetSource(c *gin.Context) {
	h.sourceCommand(c, model.OperationTypeSource, "source", h.processor().Source(), true)
}

// NextSource selects the next main zone input
// @Summary Next source
// @Tags Control
// @Produce json
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Router /device/source/next [post]
func (h *ControlHandler) NextSource(c *gin.Context) {
	src := h.processor().Source()
	h.execute(c, model.OperationTypeSource, "source_next", nil, true, func(ctx context.Context) (interface{}, error) {
		return src.Next(ctx)
	})
}

// PreviousSource selects the previous main zone input
// @Summary Previous source
// @Tags Control
// @Produce json
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Router /device/source/previous [post]
func (h *ControlHandler) PreviousSource(c *gin.Context) {
	src := h.processor().Source()
	h.execute(c, model.OperationTypeSource, "source_previous", nil, true, func(ctx context.Context) (interface{}, error) {
		return src.Previous(ctx)
	})
}

// ListSources lists every input with its configured or default name
// @Summary List sources
// @Tags Control
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]service.SourceInfo} "Sources retrieved"
// @Router /device/sources [get]
func (h *ControlHandler) ListSources(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Sources retrieved", h.deviceService.Sources())
}

// GetSource asks the processor for an input's name
// @Summary Get source
// @Tags Control
// @Produce json
// @Param index path int true "Source index"
// @Success 200 {object} utils.APIResponse{data=driver.Source} "Source retrieved"
// @Failure 400 {object} utils.APIResponse "Invalid index"
// @Router /device/sources/{index} [get]
func (h *ControlHandler) GetSource(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid source index", err)
		return
	}
	src, err := h.processor().Source().Info(c.Request.Context(), index)
	if err != nil {
		respondError(c, "Failed to read source", h.deviceService.Redact(err))
		return
	}
	if src == nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Source not reported by processor", nil)
		return
	}
	if name := h.deviceService.SourceName(src.Index); name != "" {
		src.Name = name
	}
	utils.SuccessResponse(c, http.StatusOK, "Source retrieved", src)
}

// Loudness

// SetLoudness enables or disables loudness compensation
// @Summary Set loudness
// @Tags Control
// @Accept json
// @Produce json
// @Param request body LoudnessRequest true "Loudness state"
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Failure 400 {object} utils.APIResponse "Invalid request or not supported"
// @Router /device/loudness [put]
func (h *ControlHandler) SetLoudness(c *gin.Context) {
	var req LoudnessRequest
	if !bindJSON(c, &req) {
		return
	}
	loudness := h.processor().Loudness()
	enabled := *req.Enabled
	h.execute(c, model.OperationTypeLoudness, "loudness_set", map[string]interface{}{"enabled": enabled},
		h.capabilities().Loudness, func(ctx context.Context) (interface{}, error) {
			if enabled {
				return loudness.On(ctx)
			}
			return loudness.Off(ctx)
		})
}

// Trims

// SetTrim sets a tone or channel trim
// @Summary Set trim
// @Description Set bass, treble, center, lfe, surrounds or height. Level is in tenths of a dB and db in dB; values are clamped to -12.0..12.0 dB
// @Tags Control
// @Accept json
// @Produce json
// @Param channel path string true "Trim" Enums(bass, treble, center, lfe, surrounds, height)
// @Param request body TrimRequest true "Trim level"
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Failure 400 {object} utils.APIResponse "Invalid request or not supported"
// @Router /device/trims/{channel} [put]
func (h *ControlHandler) SetTrim(c *gin.Context) {
	var req TrimRequest
	if !bindJSON(c, &req) {
		return
	}
	var level int
	switch {
	case req.Level != nil:
		level = *req.Level
	case req.DB != nil:
		level = model.TrimFromDB(*req.DB)
	default:
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", fmt.Errorf("level or db is required"))
		return
	}
	level = mcintosh.ClampTrim(level)

	name := c.Param("channel")
	params := map[string]interface{}{"channel": name, "level": level}
	switch {
	case isTone(name):
		tones := h.processor().BassTreble()
		h.execute(c, model.OperationTypeTrim, "trim_set", params, h.capabilities().AudioTrim, func(ctx context.Context) (interface{}, error) {
			return tones.Set(ctx, driver.Tone(name), level)
		})
	case driver.Channel(name).Valid():
		trims := h.processor().ChannelTrim()
		h.execute(c, model.OperationTypeTrim, "trim_set", params, h.capabilities().ChannelTrim, func(ctx context.Context) (interface{}, error) {
			return trims.Set(ctx, driver.Channel(name), level)
		})
	default:
		respondError(c, "Unknown trim", fmt.Errorf("%w: %s", mcintosh.ErrInvalidControl, name))
	}
}

// TrimUp raises a trim by one step
// @Summary Trim up
// @Tags Control
// @Produce json
// @Param channel path string true "Trim" Enums(bass, treble, center, lfe, surrounds, height)
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Router /device/trims/{channel}/up [post]
func (h *ControlHandler) TrimUp(c *gin.Context) {
	h.trimStep(c, true)
}

// TrimDown lowers a trim by one step
// @Summary Trim down
// @Tags Control
// @Produce json
// @Param channel path string true "Trim" Enums(bass, treble, center, lfe, surrounds, height)
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Router /device/trims/{channel}/down [post]
func (h *ControlHandler) TrimDown(c *gin.Context) {
	h.trimStep(c, false)
}

func (h *ControlHandler) trimStep(c *gin.Context, up bool) {
	name := c.Param("channel")
	action := "trim_down"
	if up {
		action = "trim_up"
	}
	params := map[string]interface{}{"channel": name}

	switch {
	case isTone(name):
		tones := h.processor().BassTreble()
		h.execute(c, model.OperationTypeTrim, action, params, h.capabilities().AudioTrim, func(ctx context.Context) (interface{}, error) {
			if up {
				return tones.Up(ctx, driver.Tone(name))
			}
			return tones.Down(ctx, driver.Tone(name))
		})
	case driver.Channel(name).Valid():
		trims := h.processor().ChannelTrim()
		h.execute(c, model.OperationTypeTrim, action, params, h.capabilities().ChannelTrim, func(ctx context.Context) (interface{}, error) {
			if up {
				return trims.Up(ctx, driver.Channel(name))
			}
			return trims.Down(ctx, driver.Channel(name))
		})
	default:
		respondError(c, "Unknown trim", fmt.Errorf("%w: %s", mcintosh.ErrInvalidControl, name))
	}
}

// Lipsync

// SetLipsync sets the audio delay
// @Summary Set lipsync
// @Tags Control
// @Accept json
// @Produce json
// @Param request body LipsyncRequest true "Delay value"
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Failure 400 {object} utils.APIResponse "Invalid request or not supported"
// @Router /device/lipsync [put]
func (h *ControlHandler) SetLipsync(c *gin.Context) {
	var req LipsyncRequest
	if !bindJSON(c, &req) {
		return
	}
	lipsync := h.processor().Lipsync()
	value := *req.Value
	h.execute(c, model.OperationTypeLipsync, "lipsync_set", map[string]interface{}{"value": value},
		h.capabilities().Lipsync, func(ctx context.Context) (interface{}, error) {
			return lipsync.Set(ctx, value)
		})
}

// LipsyncUp increases the audio delay
// @Summary Lipsync up
// @Tags Control
// @Produce json
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Router /device/lipsync/up [post]
func (h *ControlHandler) LipsyncUp(c *gin.Context) {
	lipsync := h.processor().Lipsync()
	h.execute(c, model.OperationTypeLipsync, "lipsync_up", nil, h.capabilities().Lipsync, func(ctx context.Context) (interface{}, error) {
		return lipsync.Up(ctx)
	})
}

// LipsyncDown decreases the audio delay
// @Summary Lipsync down
// @Tags Control
// @Produce json
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Router /device/lipsync/down [post]
func (h *ControlHandler) LipsyncDown(c *gin.Context) {
	lipsync := h.processor().Lipsync()
	h.execute(c, model.OperationTypeLipsync, "lipsync_down", nil, h.capabilities().Lipsync, func(ctx context.Context) (interface{}, error) {
		return lipsync.Down(ctx)
	})
}

// GetLipsyncRange reads the delay range
// @Summary Get lipsync range
// @Tags Control
// @Produce json
// @Success 200 {object} utils.APIResponse{data=driver.Range} "Lipsync range retrieved"
// @Failure 400 {object} utils.APIResponse "Not supported by this model"
// @Router /device/lipsync/range [get]
func (h *ControlHandler) GetLipsyncRange(c *gin.Context) {
	if !h.capabilities().Lipsync {
		respondError(c, "Lipsync not supported", errUnsupportedFeature)
		return
	}
	rng, err := h.processor().Lipsync().GetRange(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to read lipsync range", h.deviceService.Redact(err))
		return
	}
	if rng == nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Lipsync range not reported by processor", nil)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Lipsync range retrieved", rng)
}

// Zone 2

// SetZone2Power switches zone 2
// @Summary Set zone 2 power
// @Tags Zone 2
// @Accept json
// @Produce json
// @Param request body SwitchRequest true "Power action"
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Router /device/zone2/power [post]
func (h *ControlHandler) SetZone2Power(c *gin.Context) {
	h.switchCommand(c, model.OperationTypeZone2, "zone2_power", h.processor().Zone2().Power(), h.capabilities().Zone2)
}

// SetZone2Volume sets the zone 2 volume
// @Summary Set zone 2 volume
// @Tags Zone 2
// @Accept json
// @Produce json
// @Param request body LevelRequest true "Volume level"
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Router /device/zone2/volume [put]
func (h *ControlHandler) SetZone2Volume(c *gin.Context) {
	h.levelCommand(c, model.OperationTypeZone2, "zone2_volume", h.processor().Zone2().Volume(), h.capabilities().Zone2)
}

// Zone2VolumeUp raises the zone 2 volume
// @Summary Zone 2 volume up
// @Tags Zone 2
// @Accept json
// @Produce json
// @Param request body StepRequest false "Step amount"
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Router /device/zone2/volume/up [post]
func (h *ControlHandler) Zone2VolumeUp(c *gin.Context) {
	h.stepCommand(c, model.OperationTypeZone2, "zone2_volume", h.processor().Zone2().Volume(), true, h.capabilities().Zone2)
}

// Zone2VolumeDown lowers the zone 2 volume
// @Summary Zone 2 volume down
// @Tags Zone 2
// @Accept json
// @Produce json
// @Param request body StepRequest false "Step amount"
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Router /device/zone2/volume/down [post]
func (h *ControlHandler) Zone2VolumeDown(c *gin.Context) {
	h.stepCommand(c, model.OperationTypeZone2, "zone2_volume", h.processor().Zone2().Volume(), false, h.capabilities().Zone2)
}

// SetZone2Mute mutes or unmutes zone 2
// @Summary Set zone 2 mute
// @Tags Zone 2
// @Accept json
// @Produce json
// @Param request body SwitchRequest true "Mute action"
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Router /device/zone2/mute [post]
func (h *ControlHandler) SetZone2Mute(c *gin.Context) {
	h.switchCommand(c, model.OperationTypeZone2, "zone2_mute", h.processor().Zone2().Mute(), h.capabilities().Zone2)
}

// SetZone2Source selects a zone 2 input
// @Summary Set zone 2 source
// @Tags Zone 2
// @Accept json
// @Produce json
// @Param request body SourceRequest true "Source index"
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Router /device/zone2/source [put]
func (h *ControlHandler) SetZone2Source(c *gin.Context) {
	h.sourceCommand(c, model.OperationTypeZone2, "zone2_source", h.processor().Zone2().Source(), h.capabilities().Zone2)
}

// NextZone2Source selects the next zone 2 input
// @Summary Next zone 2 source
// @Tags Zone 2
// @Produce json
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Router /device/zone2/source/next [post]
func (h *ControlHandler) NextZone2Source(c *gin.Context) {
	src := h.processor().Zone2().Source()
	h.execute(c, model.OperationTypeZone2, "zone2_source_next", nil, h.capabilities().Zone2, func(ctx context.Context) (interface{}, error) {
		return src.Next(ctx)
	})
}

// PreviousZone2Source selects the previous zone 2 input
// @Summary Previous zone 2 source
// @Tags Zone 2
// @Produce json
// @Success 200 {object} utils.APIResponse{data=service.OperationResponse} "Command executed"
// @Router /device/zone2/source/previous [post]
func (h *ControlHandler) PreviousZone2Source(c *gin.Context) {
	src := h.processor().Zone2().Source()
	h.execute(c, model.OperationTypeZone2, "zone2_source_previous", nil, h.capabilities().Zone2, func(ctx context.Context) (interface{}, error) {
		return src.Previous(ctx)
	})
}

// Shared command shapes

func (h *ControlHandler) switchCommand(c *gin.Context, opType model.OperationType, name string, ctl driver.SwitchControl, supported bool) {
	var req SwitchRequest
	if !bindJSON(c, &req) {
		return
	}
	action := req.Action
	h.execute(c, opType, name+"_"+action, map[string]interface{}{"action": action}, supported, func(ctx context.Context) (interface{}, error) {
		switch action {
		case "on":
			return ctl.On(ctx)
		case "off":
			return ctl.Off(ctx)
		default:
			return ctl.Toggle(ctx)
		}
	})
}

func (h *ControlHandler) levelCommand(c *gin.Context, opType model.OperationType, name string, ctl driver.LevelControl, supported bool) {
	var req LevelRequest
	if !bindJSON(c, &req) {
		return
	}
	level := mcintosh.ClampVolume(*req.Level)
	h.execute(c, opType, name+"_set", map[string]interface{}{"level": level}, supported, func(ctx context.Context) (interface{}, error) {
		return ctl.Set(ctx, level)
	})
}

func (h *ControlHandler) stepCommand(c *gin.Context, opType model.OperationType, name string, ctl driver.LevelControl, up, supported bool) {
	var req StepRequest
	if c.Request.ContentLength > 0 {
		if !bindJSON(c, &req) {
			return
		}
	}
	action := name + "_down"
	if up {
		action = name + "_up"
	}
	amount := req.Amount
	h.execute(c, opType, action, map[string]interface{}{"amount": amount}, supported, func(ctx context.Context) (interface{}, error) {
		if up {
			return ctl.Up(ctx, amount)
		}
		return ctl.Down(ctx, amount)
	})
}

func (h *ControlHandler) sourceCommand(c *gin.Context, opType model.OperationType, name string, ctl driver.SelectorControl, supported bool) {
	var req SourceRequest
	if !bindJSON(c, &req) {
		return
	}
	index := *req.Index
	params := map[string]interface{}{"index": index, "name": h.deviceService.SourceName(index)}
	h.execute(c, opType, name+"_set", params, supported, func(ctx context.Context) (interface{}, error) {
		return ctl.Set(ctx, index)
	})
}

// execute runs fn as an audited operation and writes the response
func (h *ControlHandler) execute(
	c *gin.Context,
	opType model.OperationType,
	action string,
	params map[string]interface{},
	supported bool,
	fn service.CommandFunc,
) {
	if !supported {
		respondError(c, "Not supported by "+h.deviceService.Profile().Name, errUnsupportedFeature)
		return
	}

	req := &service.OperationRequest{
		OperationType: opType,
		Action:        action,
		Params:        params,
		RequestID:     c.GetString("request_id"),
	}
	resp, err := h.operationService.Execute(c.Request.Context(), req, fn)
	if err != nil {
		utils.LoggerWithRequestID(h.logger.Logger, req.RequestID).Warn("Command failed",
			zap.String("action", action),
			zap.String("status", string(resp.Status)),
		)
		respondError(c, "Command failed", h.deviceService.Redact(err))
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Command executed", resp)
}

func (h *ControlHandler) processor() driver.AudioProcessor {
	return h.deviceService.Processor()
}

func (h *ControlHandler) capabilities() mcintosh.Capabilities {
	return h.deviceService.Profile().Capabilities
}

func isTone(name string) bool {
	return name == string(driver.ToneBass) || name == string(driver.ToneTreble)
}
