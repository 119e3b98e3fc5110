package api

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	imagepkg "github.com/youruser/cardinserts/internal/image"
	"github.com/youruser/cardinserts/internal/progress"
)

// health
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// qr endpoint returns a PNG of a QR for "text" query param
func qrHandler(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	writeQR(c, text)
}

func writeQR(c *gin.Context, text string) {
	size := 400
	if v, err := strconv.Atoi(c.Query("size")); err == nil {
		size = v
	}
	b, err := imagepkg.GenerateQRPNG(text, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

func (s *Server) createJob(c *gin.Context) {
	var req jobRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	u, err := url.Parse(req.URL)
	if req.URL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url must be a valid http(s) URL"})
		return
	}
	if req.From < 0 || req.To < 0 || (req.To > 0 && req.From > req.To) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index range"})
		return
	}
	job := s.start(req)
	c.JSON(http.StatusAccepted, gin.H{"id": job.ID, "status": statusQueued})
}

type skipView struct {
	Index  int    `json:"index"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

type jobView struct {
	ID       string           `json:"id"`
	URL      string           `json:"url"`
	Set      string           `json:"set"`
	Status   string           `json:"status"`
	Error    string           `json:"error,omitempty"`
	Created  time.Time        `json:"created"`
	Finished *time.Time       `json:"finished,omitempty"`
	Inserts  int              `json:"inserts"`
	Pages    int              `json:"pages"`
	Skipped  []skipView       `json:"skipped"`
	Events   []progress.Event `json:"events"`
}

func (s *Server) lookup(c *gin.Context) (*Job, bool) {
	job, ok := s.jobs.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
	}
	return job, ok
}

func (s *Server) getJob(c *gin.Context) {
	job, ok := s.lookup(c)
	if !ok {
		return
	}
	st := job.state()
	v := jobView{
		ID:      job.ID,
		URL:     job.URL,
		Set:     job.Set,
		Status:  st.Status,
		Error:   st.Err,
		Created: job.Created,
		Skipped: []skipView{},
		Events:  job.Events.Events(),
	}
	if !st.Finished.IsZero() {
		v.Finished = &st.Finished
	}
	if rep := st.Report; rep != nil {
		v.Inserts = len(rep.Artifacts)
		v.Pages = len(rep.Document.Pages)
		for _, r := range rep.Skipped() {
			v.Skipped = append(v.Skipped, skipView{Index: r.Record.Index, Stage: r.Skip.Stage, Reason: r.Skip.Reason()})
		}
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) cancelJob(c *gin.Context) {
	job, ok := s.lookup(c)
	if !ok {
		return
	}
	job.Cancel()
	c.JSON(http.StatusAccepted, gin.H{"id": job.ID})
}

func (s *Server) jobDocument(c *gin.Context) {
	job, ok := s.lookup(c)
	if !ok {
		return
	}
	if st := job.state(); st.Status != statusDone {
		c.JSON(http.StatusConflict, gin.H{"error": "document not ready", "status": st.Status})
		return
	}
	c.FileAttachment(job.DocumentPath, filepath.Base(job.DocumentPath))
}

func (s *Server) jobInsert(c *gin.Context) {
	job, ok := s.lookup(c)
	if !ok {
		return
	}
	key := strings.TrimSuffix(c.Param("key"), ".png")
	if _, err := strconv.Atoi(key); err != nil || strings.HasPrefix(key, "-") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid insert key"})
		return
	}
	p := filepath.Join(job.InsertsDir, key+".png")
	if _, err := os.Stat(p); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "insert not found"})
		return
	}
	c.File(p)
}

// jobQR encodes the document download link so the PDF can be opened on a
// phone next to the printer.
func (s *Server) jobQR(c *gin.Context) {
	job, ok := s.lookup(c)
	if !ok {
		return
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := c.GetHeader("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	link := scheme + "://" + c.Request.Host + "/api/jobs/" + job.ID + "/document"
	writeQR(c, link)
}
