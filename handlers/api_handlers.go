package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"gen-data-go/db"
	"gen-data-go/generator"
	"gen-data-go/metrics"
	"gen-data-go/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// APIHandler holds the dependencies for API handlers
type APIHandler struct {
	RedisService *db.RedisService
	Options      generator.Options
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(service *db.RedisService, opts generator.Options) *APIHandler {
	return &APIHandler{
		RedisService: service,
		Options:      opts,
	}
}

// NewRouter wires every route onto a gin engine
func NewRouter(h *APIHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/dataset", h.DownloadDataset)
		api.POST("/import/dataset", h.ImportDataset)

		api.GET("/classes", h.GetAllClasses)
		api.GET("/classes/:classId", h.GetClassByID)
		api.GET("/classes/:classId/students", h.GetStudentsByClass)
		api.GET("/classes/:classId/random-student", h.GetRandomStudent)

		api.GET("/students/:studentId/scores", h.GetScoresByStudent)

		api.GET("/ping", PingHandler)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// --- Dataset Handlers ---

// DownloadDataset handles GET /api/dataset
func (h *APIHandler) DownloadDataset(c *gin.Context) {
	ds, err := generator.Generate(generator.NewRand(0), h.Options)
	if err != nil {
		logrus.Errorf("Error generating dataset: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate dataset"})
		return
	}
	sheets := ds.Sheets()

	sink := db.NewExcelSink()
	defer func() {
		if err := sink.Close(); err != nil {
			logrus.Errorf("Error closing workbook: %v", err)
		}
	}()

	start := time.Now()
	var buf bytes.Buffer
	err = db.WriteSheets(sink, sheets)
	if err == nil {
		_, err = sink.WriteTo(&buf)
	}
	if err != nil {
		logrus.Errorf("Error writing dataset workbook: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write workbook"})
		return
	}
	metrics.ObserveWrite(start)
	metrics.ObserveSheets(sheets)

	c.Header("Content-Disposition", `attachment; filename="gen_data.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ImportDataset handles POST /api/import/dataset
func (h *APIHandler) ImportDataset(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		logrus.Warnf("Error getting form file: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Error retrieving uploaded file: " + err.Error()})
		return
	}
	defer file.Close()

	logrus.Infof("Received dataset upload: %s", header.Filename)

	students, scores, err := h.RedisService.ImportDatasetFromExcel(file)
	if err != nil {
		logrus.Errorf("Error importing dataset from file %s: %v", header.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to import dataset: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "Import successful",
		"importedStudents": students,
		"importedScores":   scores,
	})
}

// --- Class Handlers ---

// GetAllClasses handles GET /api/classes
func (h *APIHandler) GetAllClasses(c *gin.Context) {
	classes, err := h.RedisService.GetAllClasses()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve classes"})
		return
	}
	if classes == nil {
		classes = []models.Clazz{}
	}
	c.JSON(http.StatusOK, classes)
}

// GetClassByID handles GET /api/classes/:classId
func (h *APIHandler) GetClassByID(c *gin.Context) {
	classID := c.Param("classId")

	clazz, err := h.RedisService.GetClassByID(classID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve class details"})
		return
	}
	if clazz == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return
	}

	c.JSON(http.StatusOK, clazz)
}

// --- Student Handlers ---

// GetStudentsByClass handles GET /api/classes/:classId/students
func (h *APIHandler) GetStudentsByClass(c *gin.Context) {
	classID := c.Param("classId")

	exists, err := h.RedisService.ClassExists(classID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify class"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return
	}

	students, err := h.RedisService.GetStudentsByClassID(classID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve students for the class"})
		return
	}
	if students == nil {
		students = []models.Student{}
	}

	c.JSON(http.StatusOK, students)
}

// GetRandomStudent handles GET /api/classes/:classId/random-student
func (h *APIHandler) GetRandomStudent(c *gin.Context) {
	classID := c.Param("classId")

	student, err := h.RedisService.GetRandomStudent(classID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get random student"})
		return
	}

	if student == nil {
		// either the class is unknown or it has no students
		exists, err := h.RedisService.ClassExists(classID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify class"})
			return
		}
		if !exists {
			c.JSON(http.StatusNotFound, gin.H{"message": "Class not found"})
		} else {
			c.JSON(http.StatusNotFound, gin.H{"message": "No students found in this class"})
		}
		return
	}

	c.JSON(http.StatusOK, student)
}

// GetScoresByStudent handles GET /api/students/:studentId/scores
func (h *APIHandler) GetScoresByStudent(c *gin.Context) {
	studentID := c.Param("studentId")

	student, err := h.RedisService.GetStudentByID(studentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve student"})
		return
	}
	if student == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	scores, err := h.RedisService.GetScoresByStudentID(studentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve scores"})
		return
	}
	if scores == nil {
		scores = []models.Score{}
	}

	c.JSON(http.StatusOK, scores)
}

// PingHandler handles GET /api/ping
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Pong!"})
}
