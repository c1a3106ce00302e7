package routers

import (
	"net/http"
	"time"

	"github.com/StreamRack/StreamRack/log"
	"github.com/StreamRack/StreamRack/utils"
	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/load"
	"github.com/shirou/gopsutil/mem"
)

/**
 * @apiDefine stats Server statistics
 */

var startedAt = time.Now()

/**
 * @api {get} /api/v1/stats Server statistics
 * @apiGroup stats
 * @apiName ServerStats
 * @apiSuccess (200) {Number} cpu CPU usage percent
 * @apiSuccess (200) {Number} memoryTotal
 * @apiSuccess (200) {Number} memoryUsed
 * @apiSuccess (200) {Number} diskTotal
 * @apiSuccess (200) {Number} diskUsed
 * @apiSuccess (200) {Number} load1
 * @apiSuccess (200) {Number} uptimeSeconds
 * @apiSuccess (200) {Number} streams Stream count on this server
 * @apiSuccess (200) {Number} subscribers Account count
 */
func (h *APIHandler) ServerStats(c *gin.Context) {
	stats := gin.H{
		"startedAt":     utils.DateTime(startedAt),
		"uptimeSeconds": int(time.Since(startedAt).Seconds()),
		"streams":       len(h.settings.Streams),
	}
	if subs, err := h.store.AllSubscribers(); err == nil {
		stats["subscribers"] = len(subs)
	} else {
		log.Error("count subscribers err: ", err)
		abortError(c, http.StatusInternalServerError, "stats failed")
		return
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats["cpu"] = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats["memoryTotal"] = vm.Total
		stats["memoryUsed"] = vm.Used
	}
	if usage, err := disk.Usage(h.settings.HlsDirectory); err == nil {
		stats["diskTotal"] = usage.Total
		stats["diskUsed"] = usage.Used
	}
	if avg, err := load.Avg(); err == nil {
		stats["load1"] = avg.Load1
	}
	c.IndentedJSON(200, stats)
}

/**
 * @api {post} /api/v1/restart Restart the HTTP service
 * @apiGroup stats
 * @apiName Restart
 * @apiSuccess (200) {String} data OK
 */
func (h *APIHandler) Restart(c *gin.Context) {
	log.Info("restart requested")
	c.IndentedJSON(200, "OK")
	go func() {
		h.RestartChan <- true
	}()
}
