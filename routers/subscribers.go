package routers

import (
	"net/http"
	"strings"

	"github.com/StreamRack/StreamRack/log"
	"github.com/StreamRack/StreamRack/models"
	"github.com/StreamRack/StreamRack/utils"
	"github.com/gin-gonic/gin"
)

/**
 * @apiDefine subscriber Subscriber management
 */

/**
 * @api {post} /api/v1/subscribers Create a subscriber
 * @apiGroup subscriber
 * @apiName SubscriberCreate
 * @apiParam {String} email
 * @apiParam {String} password
 * @apiParam {String} [first_name]
 * @apiParam {String} [last_name]
 * @apiParam {String} [country]
 * @apiParam {String} [language]
 * @apiSuccess (200) {Object} subscriber The created account
 */
func (h *APIHandler) SubscriberCreate(c *gin.Context) {
	type Form struct {
		Email     string `json:"email" binding:"required"`
		Password  string `json:"password" binding:"required"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Country   string `json:"country"`
		Language  string `json:"language"`
	}
	var form Form
	if err := c.BindJSON(&form); err != nil {
		log.Error("create subscriber bind err: ", err)
		abortError(c, http.StatusBadRequest, "request error")
		return
	}
	if form.Language == "" {
		form.Language = models.DefaultLocale
	}
	sub := models.MakeSubscriber(form.Email, form.FirstName, form.LastName,
		form.Password, form.Country, form.Language)
	sub.AddServer(h.settings)
	if err := h.store.SaveSubscriber(sub); err != nil {
		log.Error("save subscriber err: ", err)
		abortError(c, http.StatusInternalServerError, "subscriber create failed")
		return
	}
	c.IndentedJSON(200, sub)
}

/**
 * @api {get} /api/v1/subscribers List subscribers
 * @apiGroup subscriber
 * @apiName SubscriberList
 * @apiParam {Number} [start] Page offset, zero based
 * @apiParam {Number} [limit] Page size
 * @apiParam {String} [sort] Sort field
 * @apiParam {String=ascending,descending} [order] Sort order
 * @apiParam {String} [q] Filter by email
 * @apiSuccess (200) {Number} total Total count
 * @apiSuccess (200) {Array} rows Accounts
 */
func (h *APIHandler) SubscriberList(c *gin.Context) {
	form := utils.NewPageForm()
	if err := c.Bind(form); err != nil {
		log.Error("list subscribers bind err: ", err)
		return
	}
	subs, err := h.store.AllSubscribers()
	if err != nil {
		log.Error("list subscribers err: ", err)
		abortError(c, http.StatusInternalServerError, "subscriber list failed")
		return
	}
	rows := make([]interface{}, 0)
	for _, sub := range subs {
		if form.Q != "" && !strings.Contains(strings.ToLower(sub.Email), strings.ToLower(form.Q)) {
			continue
		}
		rows = append(rows, map[string]interface{}{
			"id":        sub.ID,
			"email":     sub.Email,
			"status":    int(sub.Status),
			"devices":   len(sub.Devices),
			"streams":   len(sub.Streams),
			"vods":      len(sub.Vods),
			"catchups":  len(sub.Catchups),
			"expiresAt": utils.DateTime(sub.ExpDate),
		})
	}
	pr := utils.NewPageResult(rows)
	if form.Sort != "" {
		pr.Sort(form.Sort, form.Order)
	}
	pr.Slice(form.Start, form.Limit)
	c.IndentedJSON(200, pr)
}

func (h *APIHandler) subscriber(c *gin.Context) *models.Subscriber {
	sub, err := h.store.GetSubscriber(c.Param("id"))
	if err != nil {
		if err == models.ErrNotFound {
			notFound(c, "subscriber")
		} else {
			log.Error("load subscriber err: ", err)
			abortError(c, http.StatusInternalServerError, "subscriber load failed")
		}
		return nil
	}
	return sub
}

/**
 * @api {get} /api/v1/subscribers/:id Get one subscriber
 * @apiGroup subscriber
 * @apiName SubscriberGet
 * @apiSuccess (200) {Object} subscriber
 */
func (h *APIHandler) SubscriberGet(c *gin.Context) {
	sub := h.subscriber(c)
	if sub == nil {
		return
	}
	c.IndentedJSON(200, sub)
}

/**
 * @api {delete} /api/v1/subscribers/:id Delete a subscriber
 * @apiGroup subscriber
 * @apiName SubscriberDelete
 * @apiSuccess (200) {String} result OK
 */
func (h *APIHandler) SubscriberDelete(c *gin.Context) {
	sub := h.subscriber(c)
	if sub == nil {
		return
	}
	if err := sub.DeleteFake(h.store); err != nil {
		log.Error("delete subscriber ", sub.ID, " err: ", err)
	}
	if err := h.store.SaveSubscriber(sub); err != nil {
		log.Error("save subscriber ", sub.ID, " err: ", err)
		abortError(c, http.StatusInternalServerError, "subscriber delete failed")
		return
	}
	c.IndentedJSON(200, "OK")
}

/**
 * @api {post} /api/v1/subscribers/:id/login Check credentials
 * @apiGroup subscriber
 * @apiName SubscriberLogin
 * @apiParam {String} password
 * @apiSuccess (200) {String} result OK
 */
func (h *APIHandler) SubscriberLogin(c *gin.Context) {
	type Form struct {
		Password string `json:"password" binding:"required"`
	}
	var form Form
	if err := c.BindJSON(&form); err != nil {
		abortError(c, http.StatusBadRequest, "request error")
		return
	}
	sub := h.subscriber(c)
	if sub == nil {
		return
	}
	if sub.Status == models.SubscriberDeleted || !models.CheckPasswordHash(sub.Password, form.Password) {
		abortError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	c.IndentedJSON(200, "OK")
}

/**
 * @api {post} /api/v1/subscribers/:id/devices Register a device
 * @apiGroup subscriber
 * @apiName DeviceAdd
 * @apiParam {String} name Device name
 * @apiSuccess (200) {Object} device The registered device
 */
func (h *APIHandler) DeviceAdd(c *gin.Context) {
	type Form struct {
		Name string `json:"name" binding:"required"`
	}
	var form Form
	if err := c.BindJSON(&form); err != nil {
		abortError(c, http.StatusBadRequest, "request error")
		return
	}
	sub := h.subscriber(c)
	if sub == nil {
		return
	}
	device := models.NewDevice(form.Name)
	sub.AddDevice(device)
	if err := h.store.SaveSubscriber(sub); err != nil {
		log.Error("save subscriber ", sub.ID, " err: ", err)
		abortError(c, http.StatusInternalServerError, "device add failed")
		return
	}
	if sub.FindDevice(device.ID) == nil {
		abortError(c, http.StatusConflict, "device quota reached")
		return
	}
	c.IndentedJSON(200, device)
}

/**
 * @api {delete} /api/v1/subscribers/:id/devices/:did Remove a device
 * @apiGroup subscriber
 * @apiName DeviceRemove
 * @apiSuccess (200) {String} result OK
 */
func (h *APIHandler) DeviceRemove(c *gin.Context) {
	sub := h.subscriber(c)
	if sub == nil {
		return
	}
	sub.RemoveDevice(c.Param("did"))
	if err := h.store.SaveSubscriber(sub); err != nil {
		log.Error("save subscriber ", sub.ID, " err: ", err)
		abortError(c, http.StatusInternalServerError, "device remove failed")
		return
	}
	c.IndentedJSON(200, "OK")
}

/**
 * @api {post} /api/v1/subscribers/:id/streams Add an entitlement
 * @apiGroup subscriber
 * @apiName EntitlementAdd
 * @apiParam {String} sid Stream id
 * @apiParam {String=live,vod,catchup} [set=live] Entitlement set
 * @apiParam {Boolean} [private] Own entry instead of curated reference
 * @apiSuccess (200) {String} result OK
 */
func (h *APIHandler) EntitlementAdd(c *gin.Context) {
	type Form struct {
		StreamID string `json:"sid" binding:"required"`
		Set      string `json:"set"`
		Private  bool   `json:"private"`
	}
	var form Form
	if err := c.BindJSON(&form); err != nil {
		abortError(c, http.StatusBadRequest, "request error")
		return
	}
	sub := h.subscriber(c)
	if sub == nil {
		return
	}
	if form.Private {
		us := models.UserStream{StreamID: form.StreamID}
		switch form.Set {
		case "vod":
			sub.AddOwnVod(us)
		case "catchup":
			sub.AddOwnCatchup(us)
		default:
			sub.AddOwnStream(us)
		}
	} else {
		if _, err := h.store.GetStream(form.StreamID); err != nil {
			notFound(c, "stream")
			return
		}
		switch form.Set {
		case "vod":
			sub.AddOfficialVod(form.StreamID)
		case "catchup":
			sub.AddOfficialCatchup(form.StreamID)
		default:
			sub.AddOfficialStream(form.StreamID)
		}
	}
	if err := h.store.SaveSubscriber(sub); err != nil {
		log.Error("save subscriber ", sub.ID, " err: ", err)
		abortError(c, http.StatusInternalServerError, "entitlement add failed")
		return
	}
	c.IndentedJSON(200, "OK")
}

/**
 * @api {delete} /api/v1/subscribers/:id/streams/:sid Remove an entitlement
 * @apiGroup subscriber
 * @apiName EntitlementRemove
 * @apiParam {String=live,vod,catchup} [set=live] Entitlement set
 * @apiParam {Boolean} [private] Remove the own entry and its stream data
 * @apiSuccess (200) {String} result OK
 */
func (h *APIHandler) EntitlementRemove(c *gin.Context) {
	sub := h.subscriber(c)
	if sub == nil {
		return
	}
	sid := c.Param("sid")
	set := c.Query("set")
	if c.Query("private") == "true" {
		var err error
		switch set {
		case "vod":
			err = sub.RemoveOwnVod(sid, h.store)
		case "catchup":
			err = sub.RemoveOwnCatchup(sid, h.store)
		default:
			err = sub.RemoveOwnStream(sid, h.store)
		}
		if err != nil {
			log.Error("remove own stream ", sid, " err: ", err)
			abortError(c, http.StatusInternalServerError, "entitlement remove failed")
			return
		}
	} else {
		switch set {
		case "vod":
			sub.RemoveOfficialVod(sid)
		case "catchup":
			sub.RemoveOfficialCatchup(sid)
		default:
			sub.RemoveOfficialStream(sid)
		}
	}
	if err := h.store.SaveSubscriber(sub); err != nil {
		log.Error("save subscriber ", sub.ID, " err: ", err)
		abortError(c, http.StatusInternalServerError, "entitlement remove failed")
		return
	}
	c.IndentedJSON(200, "OK")
}

/**
 * @api {post} /api/v1/subscribers/:id/select_all Subscribe to the whole lineup
 * @apiGroup subscriber
 * @apiName SelectAll
 * @apiParam {String=live,vod,catchup} [set=live] Entitlement set
 * @apiParam {Boolean} on Subscribe when true, drop curated references when false
 * @apiSuccess (200) {String} result OK
 */
func (h *APIHandler) SelectAll(c *gin.Context) {
	type Form struct {
		Set string `json:"set"`
		On  bool   `json:"on"`
	}
	var form Form
	if err := c.BindJSON(&form); err != nil {
		abortError(c, http.StatusBadRequest, "request error")
		return
	}
	sub := h.subscriber(c)
	if sub == nil {
		return
	}
	switch form.Set {
	case "vod":
		sub.SelectAllVods(form.On)
	case "catchup":
		sub.SelectAllCatchups(form.On)
	default:
		sub.SelectAllStreams(form.On)
	}
	if err := h.store.SaveSubscriber(sub); err != nil {
		log.Error("save subscriber ", sub.ID, " err: ", err)
		abortError(c, http.StatusInternalServerError, "select all failed")
		return
	}
	c.IndentedJSON(200, "OK")
}

/**
 * @api {get} /playlist/:uid/:passwd/:did/playlist.m3u Device playlist
 * @apiGroup subscriber
 * @apiName DevicePlaylist
 * @apiSuccess (200) {String} playlist EXTM3U document for the device
 */
func (h *APIHandler) DevicePlaylist(c *gin.Context) {
	sub, err := h.store.GetSubscriber(c.Param("uid"))
	if err != nil {
		notFound(c, "subscriber")
		return
	}
	if sub.Status == models.SubscriberDeleted || sub.Password != c.Param("passwd") {
		abortError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	did := c.Param("did")
	if sub.FindDevice(did) == nil {
		notFound(c, "device")
		return
	}
	lbHost := utils.GetRequestHostname(c.Request)
	c.Data(200, playlistContentType, []byte(sub.GeneratePlaylist(did, lbHost)))
}
