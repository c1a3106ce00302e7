package routers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/StreamRack/StreamRack/engine"
	"github.com/StreamRack/StreamRack/log"
	"github.com/StreamRack/StreamRack/models"
	"github.com/StreamRack/StreamRack/utils"
	"github.com/gin-gonic/gin"
)

/**
 * @apiDefine stream Stream management
 */

const playlistContentType = "application/x-mpegurl"

/**
 * @api {post} /api/v1/streams Create a stream
 * @apiGroup stream
 * @apiName StreamCreate
 * @apiParam {String=PROXY,VOD_PROXY,RELAY,ENCODE,TIMESHIFT_RECORDER,TIMESHIFT_PLAYER,CATCHUP,TEST_LIFE,VOD_RELAY,VOD_ENCODE,COD_RELAY,COD_ENCODE,EVENT} type Stream variant
 * @apiParam {String} [name] Display name
 * @apiParam {String} [group] Semicolon separated group titles
 * @apiParam {String} [input] Source URI, required for hardware variants
 * @apiParam {String} [output] Published URI
 * @apiParam {String} [start] Catchup window start, RFC3339
 * @apiParam {String} [stop] Catchup window stop, RFC3339
 * @apiParam {String} [timeshift_dir] Recorder buffer directory for players
 * @apiParam {Number} [timeshift_delay] Player delay in seconds
 * @apiSuccess (200) {Object} stream The created stream
 */
func (h *APIHandler) StreamCreate(c *gin.Context) {
	type Form struct {
		Type           string  `json:"type" binding:"required"`
		Name           string  `json:"name"`
		Group          string  `json:"group"`
		TvgID          string  `json:"tvg_id"`
		TvgName        string  `json:"tvg_name"`
		TvgLogo        string  `json:"tvg_logo"`
		Price          float64 `json:"price"`
		Input          string  `json:"input"`
		Output         string  `json:"output"`
		Start          string  `json:"start"`
		Stop           string  `json:"stop"`
		TimeshiftDir   string  `json:"timeshift_dir"`
		TimeshiftDelay int     `json:"timeshift_delay"`
	}
	var form Form
	if err := c.BindJSON(&form); err != nil {
		log.Error("create stream bind err: ", err)
		abortError(c, http.StatusBadRequest, "request error")
		return
	}
	st, err := buildStream(form.Type, form.Input, form.Output, form.Start, form.Stop,
		form.TimeshiftDir, form.TimeshiftDelay)
	if err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}
	if form.Name != "" {
		st.Name = form.Name
	}
	if form.Group != "" {
		st.Group = form.Group
	}
	if form.TvgID != "" {
		st.TvgID = form.TvgID
	}
	if form.TvgName != "" {
		st.TvgName = form.TvgName
	}
	if form.TvgLogo != "" {
		st.TvgLogo = form.TvgLogo
	}
	st.Price = form.Price

	h.settings.AddStream(st)
	if err := h.store.SaveStream(st); err != nil {
		log.Error("save stream err: ", err)
		abortError(c, http.StatusInternalServerError, "stream create failed")
		return
	}
	log.Info("created ", st.Kind(), " stream ", st.ID)
	c.IndentedJSON(200, st)
}

func buildStream(kind, input, output, start, stop, tsDir string, tsDelay int) (*models.Stream, error) {
	k, err := models.ParseStreamKind(kind)
	if err != nil {
		return nil, err
	}
	switch k {
	case models.Proxy:
		st := models.NewProxyStream()
		if output != "" {
			st.Output = models.OutputURLList{models.NewOutputURL(output)}
		}
		return st, nil
	case models.VodProxy:
		st := models.NewVodProxyStream()
		if output != "" {
			st.Output = models.OutputURLList{models.NewOutputURL(output)}
		}
		return st, nil
	}
	if input == "" {
		return nil, fmt.Errorf("%s stream needs an input", k)
	}
	in := models.NewInputURL(input)
	out := models.NewOutputURL(output)
	switch k {
	case models.Relay:
		return models.NewRelayStream(in, out), nil
	case models.Encode:
		return models.NewEncodeStream(in, out), nil
	case models.TimeshiftRecorder:
		return models.NewTimeshiftRecorderStream(in), nil
	case models.TimeshiftPlayer:
		return models.NewTimeshiftPlayerStream(in, out, tsDir, tsDelay), nil
	case models.Catchup:
		startAt, err := time.Parse(time.RFC3339, start)
		if err != nil {
			return nil, fmt.Errorf("catchup start: %w", err)
		}
		stopAt, err := time.Parse(time.RFC3339, stop)
		if err != nil {
			return nil, fmt.Errorf("catchup stop: %w", err)
		}
		return models.NewCatchupStream(in, out, startAt, stopAt)
	case models.TestLife:
		return models.NewTestLifeStream(in), nil
	case models.VodRelay:
		return models.NewVodRelayStream(in, out), nil
	case models.VodEncode:
		return models.NewVodEncodeStream(in, out), nil
	case models.CodRelay:
		return models.NewCodRelayStream(in, out), nil
	case models.CodEncode:
		return models.NewCodEncodeStream(in, out), nil
	case models.Event:
		return models.NewEventStream(in, out), nil
	}
	return nil, fmt.Errorf("unknown stream kind %q", kind)
}

/**
 * @api {get} /api/v1/streams List streams
 * @apiGroup stream
 * @apiName StreamList
 * @apiParam {Number} [start] Page offset, zero based
 * @apiParam {Number} [limit] Page size
 * @apiParam {String} [sort] Sort field
 * @apiParam {String=ascending,descending} [order] Sort order
 * @apiParam {String} [q] Filter by name or group
 * @apiSuccess (200) {Number} total Total count
 * @apiSuccess (200) {Array} rows Streams
 */
func (h *APIHandler) StreamList(c *gin.Context) {
	form := utils.NewPageForm()
	if err := c.Bind(form); err != nil {
		log.Error("list streams bind err: ", err)
		return
	}
	rows := make([]interface{}, 0)
	for _, st := range h.settings.Streams {
		if form.Q != "" &&
			!strings.Contains(strings.ToLower(st.Name), strings.ToLower(form.Q)) &&
			!strings.Contains(strings.ToLower(st.Group), strings.ToLower(form.Q)) {
			continue
		}
		rows = append(rows, map[string]interface{}{
			"id":        st.ID,
			"type":      st.Kind().String(),
			"name":      st.Name,
			"group":     st.Group,
			"visible":   st.Visible,
			"outputs":   len(st.Output),
			"createdAt": utils.DateTime(st.CreatedDate),
		})
	}
	pr := utils.NewPageResult(rows)
	if form.Sort != "" {
		pr.Sort(form.Sort, form.Order)
	}
	pr.Slice(form.Start, form.Limit)
	c.IndentedJSON(200, pr)
}

/**
 * @api {get} /api/v1/streams/:id Get one stream
 * @apiGroup stream
 * @apiName StreamGet
 * @apiSuccess (200) {Object} stream
 */
func (h *APIHandler) StreamGet(c *gin.Context) {
	st := h.settings.FindStream(c.Param("id"))
	if st == nil {
		notFound(c, "stream")
		return
	}
	c.IndentedJSON(200, st)
}

/**
 * @api {put} /api/v1/streams/:id Update a stream
 * @apiGroup stream
 * @apiName StreamUpdate
 * @apiParam {String} [name] Display name
 * @apiParam {String} [group] Semicolon separated group titles
 * @apiParam {Boolean} [visible] Playlist visibility
 * @apiParam {String} [extra_config] Free-form engine config overlay, JSON
 * @apiParam {String} [recorder_id] Recorder to link this stream under as a part
 * @apiSuccess (200) {Object} stream The updated stream
 */
func (h *APIHandler) StreamUpdate(c *gin.Context) {
	type Form struct {
		Name    *string  `json:"name"`
		Group   *string  `json:"group"`
		TvgID   *string  `json:"tvg_id"`
		TvgName *string  `json:"tvg_name"`
		TvgLogo *string  `json:"tvg_logo"`
		Price   *float64 `json:"price"`
		Visible *bool    `json:"visible"`
		IARC    *int     `json:"iarc"`

		AudioSelect *int    `json:"audio_select"`
		Loop        *bool   `json:"loop"`
		ExtraConfig *string `json:"extra_config"`

		RelayVideo    *bool    `json:"relay_video"`
		RelayAudio    *bool    `json:"relay_audio"`
		Deinterlace   *bool    `json:"deinterlace"`
		FrameRate     *int     `json:"frame_rate"`
		Volume        *float64 `json:"volume"`
		VideoCodec    *string  `json:"video_codec"`
		AudioCodec    *string  `json:"audio_codec"`
		AudioChannels *int     `json:"audio_channels_count"`
		Width         *int     `json:"width"`
		Height        *int     `json:"height"`
		VideoBitRate  *int     `json:"video_bit_rate"`
		AudioBitRate  *int     `json:"audio_bit_rate"`

		Description *string  `json:"description"`
		TrailerURL  *string  `json:"trailer_url"`
		UserScore   *float64 `json:"user_score"`
		Country     *string  `json:"country"`
		Duration    *int     `json:"duration"`

		RecorderID *string `json:"recorder_id"`
	}
	st := h.settings.FindStream(c.Param("id"))
	if st == nil {
		notFound(c, "stream")
		return
	}
	var form Form
	if err := c.BindJSON(&form); err != nil {
		log.Error("update stream bind err: ", err)
		abortError(c, http.StatusBadRequest, "request error")
		return
	}

	if form.Name != nil {
		st.Name = *form.Name
	}
	if form.Group != nil {
		st.Group = *form.Group
	}
	if form.TvgID != nil {
		st.TvgID = *form.TvgID
	}
	if form.TvgName != nil {
		st.TvgName = *form.TvgName
	}
	if form.TvgLogo != nil {
		st.TvgLogo = *form.TvgLogo
	}
	if form.Price != nil {
		st.Price = *form.Price
	}
	if form.Visible != nil {
		st.Visible = *form.Visible
	}
	if form.IARC != nil {
		st.IARC = *form.IARC
	}

	if form.AudioSelect != nil || form.Loop != nil || form.ExtraConfig != nil {
		if st.Hardware == nil {
			abortError(c, http.StatusBadRequest, "stream has no engine pipeline")
			return
		}
		if form.AudioSelect != nil {
			st.Hardware.AudioSelect = *form.AudioSelect
		}
		if form.Loop != nil {
			st.Hardware.Loop = *form.Loop
		}
		if form.ExtraConfig != nil {
			st.Hardware.ExtraConfig = *form.ExtraConfig
		}
	}

	if form.RelayVideo != nil || form.RelayAudio != nil || form.Deinterlace != nil ||
		form.FrameRate != nil || form.Volume != nil || form.VideoCodec != nil ||
		form.AudioCodec != nil || form.AudioChannels != nil || form.Width != nil ||
		form.Height != nil || form.VideoBitRate != nil || form.AudioBitRate != nil {
		if st.Encode == nil {
			abortError(c, http.StatusBadRequest, "stream is not an encode variant")
			return
		}
		e := st.Encode
		if form.RelayVideo != nil {
			e.RelayVideo = *form.RelayVideo
		}
		if form.RelayAudio != nil {
			e.RelayAudio = *form.RelayAudio
		}
		if form.Deinterlace != nil {
			e.Deinterlace = *form.Deinterlace
		}
		if form.FrameRate != nil {
			e.FrameRate = *form.FrameRate
		}
		if form.Volume != nil {
			e.Volume = *form.Volume
		}
		if form.VideoCodec != nil {
			e.VideoCodec = *form.VideoCodec
		}
		if form.AudioCodec != nil {
			e.AudioCodec = *form.AudioCodec
		}
		if form.AudioChannels != nil {
			e.AudioChannelsCount = *form.AudioChannels
		}
		if form.Width != nil {
			e.Size.Width = *form.Width
		}
		if form.Height != nil {
			e.Size.Height = *form.Height
		}
		if form.VideoBitRate != nil {
			e.VideoBitRate = *form.VideoBitRate
		}
		if form.AudioBitRate != nil {
			e.AudioBitRate = *form.AudioBitRate
		}
	}

	if form.Description != nil || form.TrailerURL != nil || form.UserScore != nil ||
		form.Country != nil || form.Duration != nil {
		if st.Vod == nil {
			abortError(c, http.StatusBadRequest, "stream is not an on-demand variant")
			return
		}
		if form.Description != nil {
			st.Vod.Description = *form.Description
		}
		if form.TrailerURL != nil {
			st.Vod.TrailerURL = *form.TrailerURL
		}
		if form.UserScore != nil {
			st.Vod.UserScore = *form.UserScore
		}
		if form.Country != nil {
			st.Vod.Country = *form.Country
		}
		if form.Duration != nil {
			st.Vod.Duration = *form.Duration
		}
	}

	if form.RecorderID != nil {
		recorder := h.settings.FindStream(*form.RecorderID)
		if recorder == nil || recorder.Kind() != models.TimeshiftRecorder {
			abortError(c, http.StatusBadRequest, "recorder not found")
			return
		}
		recorder.AddPart(st)
		if err := h.store.SaveStream(recorder); err != nil {
			log.Error("save recorder ", recorder.ID, " err: ", err)
			abortError(c, http.StatusInternalServerError, "stream update failed")
			return
		}
	}

	if err := h.store.SaveStream(st); err != nil {
		log.Error("save stream ", st.ID, " err: ", err)
		abortError(c, http.StatusInternalServerError, "stream update failed")
		return
	}
	c.IndentedJSON(200, st)
}

/**
 * @api {get} /api/v1/streams/:id/config Generate the engine config
 * @apiGroup stream
 * @apiName StreamConfig
 * @apiSuccess (200) {Object} config Engine configuration document
 */
func (h *APIHandler) StreamConfig(c *gin.Context) {
	st := h.settings.FindStream(c.Param("id"))
	if st == nil {
		notFound(c, "stream")
		return
	}
	data, err := st.Config().MarshalJSON()
	if err != nil {
		log.Error("generate config for stream ", st.ID, " err: ", err)
		abortError(c, http.StatusInternalServerError, "config generation failed")
		return
	}
	c.Data(200, "application/json; charset=utf-8", data)
}

/**
 * @api {post} /api/v1/streams/:id/fixup Normalize output URLs
 * @apiGroup stream
 * @apiName StreamFixup
 * @apiSuccess (200) {Object} stream The stream with rewritten outputs
 */
func (h *APIHandler) StreamFixup(c *gin.Context) {
	st := h.settings.FindStream(c.Param("id"))
	if st == nil {
		notFound(c, "stream")
		return
	}
	st.FixupOutputs()
	if err := h.store.SaveStream(st); err != nil {
		log.Error("save stream ", st.ID, " err: ", err)
		abortError(c, http.StatusInternalServerError, "stream update failed")
		return
	}
	c.IndentedJSON(200, st)
}

/**
 * @api {post} /api/v1/streams/:id/start Start the engine pipeline
 * @apiGroup stream
 * @apiName StreamStart
 * @apiSuccess (200) {String} result OK
 */
func (h *APIHandler) StreamStart(c *gin.Context) {
	st := h.settings.FindStream(c.Param("id"))
	if st == nil {
		notFound(c, "stream")
		return
	}
	h.runnersLock.Lock()
	r, ok := h.runners[st.ID]
	if !ok {
		var err error
		r, err = engine.NewRunner(st)
		if err != nil {
			h.runnersLock.Unlock()
			abortError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.runners[st.ID] = r
	}
	h.runnersLock.Unlock()
	if err := r.Start(); err != nil {
		log.Error("start stream ", st.ID, " err: ", err)
		abortError(c, http.StatusInternalServerError, "stream start failed")
		return
	}
	c.IndentedJSON(200, "OK")
}

/**
 * @api {post} /api/v1/streams/:id/stop Stop the engine pipeline
 * @apiGroup stream
 * @apiName StreamStop
 * @apiSuccess (200) {String} result OK
 */
func (h *APIHandler) StreamStop(c *gin.Context) {
	h.runnersLock.Lock()
	r := h.runners[c.Param("id")]
	h.runnersLock.Unlock()
	if r == nil {
		notFound(c, "runner")
		return
	}
	r.Stop()
	c.IndentedJSON(200, "OK")
}

/**
 * @api {delete} /api/v1/streams/:id Delete a stream
 * @apiGroup stream
 * @apiName StreamDelete
 * @apiSuccess (200) {String} result OK
 */
func (h *APIHandler) StreamDelete(c *gin.Context) {
	st := h.settings.FindStream(c.Param("id"))
	if st == nil {
		notFound(c, "stream")
		return
	}
	h.runnersLock.Lock()
	if r := h.runners[st.ID]; r != nil {
		r.Stop()
		delete(h.runners, st.ID)
	}
	h.runnersLock.Unlock()
	if err := models.SafeDeleteStream(st, h.store, h.store); err != nil {
		log.Error("delete stream ", st.ID, " err: ", err)
		abortError(c, http.StatusInternalServerError, "stream delete failed")
		return
	}
	h.settings.RemoveStream(st)
	c.IndentedJSON(200, "OK")
}

/**
 * @api {post} /api/v1/streams/import Import an M3U playlist
 * @apiGroup stream
 * @apiName StreamImport
 * @apiSuccess (200) {Number} imported Number of created proxy streams
 */
func (h *APIHandler) StreamImport(c *gin.Context) {
	entries, err := utils.ParseM3U(c.Request.Body)
	if err != nil {
		log.Error("import playlist err: ", err)
		abortError(c, http.StatusBadRequest, "malformed playlist")
		return
	}
	imported := 0
	for _, e := range entries {
		st := models.NewProxyStream()
		st.Name = e.Title
		st.Output = models.OutputURLList{models.NewOutputURL(e.URI)}
		if e.TvgID != "" {
			st.TvgID = e.TvgID
		}
		if e.TvgName != "" {
			st.TvgName = e.TvgName
		}
		if e.TvgLogo != "" {
			st.TvgLogo = e.TvgLogo
		}
		if e.Group != "" {
			st.Group = e.Group
		}
		h.settings.AddStream(st)
		if err := h.store.SaveStream(st); err != nil {
			log.Error("save imported stream err: ", err)
			h.settings.RemoveStream(st)
			continue
		}
		imported++
	}
	log.Info("imported ", imported, " of ", len(entries), " playlist entries")
	c.IndentedJSON(200, gin.H{"imported": imported})
}

/**
 * @api {get} /api/v1/playlist.m3u Service playlist
 * @apiGroup stream
 * @apiName ServicePlaylist
 * @apiSuccess (200) {String} playlist EXTM3U document of every playable stream
 */
func (h *APIHandler) ServicePlaylist(c *gin.Context) {
	c.Data(200, playlistContentType, []byte(h.settings.GeneratePlaylist()))
}

/**
 * @api {get} /api/v1/playlist/input.m3u Ingest playlist
 * @apiGroup stream
 * @apiName InputPlaylist
 * @apiSuccess (200) {String} playlist EXTM3U document of upstream feeds
 */
func (h *APIHandler) InputPlaylist(c *gin.Context) {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for _, st := range h.settings.Streams {
		b.WriteString(st.GenerateInputPlaylist(false))
	}
	c.Data(200, playlistContentType, []byte(b.String()))
}
