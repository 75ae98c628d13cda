package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"urlsnap/internal/logger"
	"urlsnap/pkg/api"
)

// Handler 调用入口：解析事件、执行抓取并封装 Lambda 风格的响应信封
type Handler struct {
	svc api.Service
	log logger.Logger
}

// New 创建事件处理器
func New(svc api.Service, l logger.Logger) *Handler {
	if l == nil {
		l = logger.NewNop()
	}
	return &Handler{svc: svc, log: l}
}

// ServeHTTP 以 Lambda runtime API 的调用形态对外提供服务
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	event, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(h.Invoke(r.Context(), event))
}

// Invoke 处理一次调用事件。事件形如 {"urls": [...]}；空字符串条目会被
// 丢弃，过滤后为空的列表按无效输入返回 400，不会发起会话。返回值始终是
// {"statusCode": int, "body": string} 信封，其中 body 为 JSON 字符串。
func (h *Handler) Invoke(ctx context.Context, event []byte) []byte {
	h.log.Info("收到调用事件")

	var urls []string
	for _, v := range gjson.GetBytes(event, "urls").Array() {
		if s := v.String(); s != "" {
			urls = append(urls, s)
		}
	}
	if len(urls) == 0 {
		body, _ := sjson.Set("{}", "error", "No URLs provided in the event.")
		return envelope(http.StatusBadRequest, body)
	}

	report, err := h.svc.Fetch(ctx, urls)
	if err != nil {
		h.log.Err(err, "抓取会话失败")
		body, _ := sjson.Set("{}", "error", err.Error())
		return envelope(http.StatusInternalServerError, body)
	}

	mappings, err := json.Marshal(report)
	if err != nil {
		body, _ := sjson.Set("{}", "error", err.Error())
		return envelope(http.StatusInternalServerError, body)
	}
	body, _ := sjson.Set("{}", "message", "Downloads completed successfully.")
	body, _ = sjson.SetRaw(body, "url_mappings", string(mappings))
	return envelope(http.StatusOK, body)
}

// envelope 组装响应信封；body 以字符串形式嵌入，与原始调用方约定一致
func envelope(status int, body string) []byte {
	out, _ := sjson.Set("{}", "statusCode", status)
	out, _ = sjson.Set(out, "body", body)
	return []byte(out)
}
