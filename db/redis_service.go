package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"gen-data-go/generator"
	"gen-data-go/models"
)

const (
	classesKey          = "classes"  // Set: Stores all class IDs
	classInfoPrefix     = "class:"   // Hash prefix: class:{id} -> stores class details
	classStudentsPrefix = "class:"   // Set prefix: class:{id}:students -> stores student IDs for a class
	studentInfoPrefix   = "student:" // Hash prefix: student:{id} -> stores student details
	studentScoresPrefix = "student:" // Set prefix: student:{id}:scores -> stores course IDs scored by a student
	scoreInfoPrefix     = "score:"   // Hash prefix: score:{studentId}:{courseId} -> stores one score
)

// RedisService handles operations with the Redis database
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context // Base context
}

// NewRedisService creates a new RedisService instance
func NewRedisService(client *redis.Client) *RedisService {
	return &RedisService{
		Client: client,
		Ctx:    context.Background(),
	}
}

// Helper to generate class info key
func getClassInfoKey(classID string) string {
	return classInfoPrefix + classID
}

// Helper to generate class students set key
func getClassStudentsKey(classID string) string {
	return classStudentsPrefix + classID + ":students"
}

// Helper to generate student info key
func getStudentInfoKey(studentID string) string {
	return studentInfoPrefix + studentID
}

// Helper to generate student scores set key
func getStudentScoresKey(studentID string) string {
	return studentScoresPrefix + studentID + ":scores"
}

// Helper to generate score info key
func getScoreInfoKey(studentID, courseID string) string {
	return scoreInfoPrefix + studentID + ":" + courseID
}

// Helper to flatten a student into hash fields
func studentFields(student models.Student) map[string]interface{} {
	return map[string]interface{}{
		"s_id":   student.ID,
		"cl_id":  student.ClassID,
		"s_name": student.Name,
		"s_sex":  student.Sex,
		"s_age":  student.Age,
		"s_tel":  student.Tel,
	}
}

// Helper to flatten a score into hash fields
func scoreFields(score models.Score) map[string]interface{} {
	return map[string]interface{}{
		"s_id":  score.StudentID,
		"c_id":  score.CourseID,
		"score": score.Score,
		"date":  score.Date,
	}
}

// --- Class Operations ---

// AddClass adds a new class to Redis
func (s *RedisService) AddClass(clazz models.Clazz) error {
	if clazz.ID == "" || clazz.Name == "" {
		return errors.New("class ID and Name cannot be empty")
	}
	pipe := s.Client.Pipeline()
	pipe.SAdd(s.Ctx, classesKey, clazz.ID)
	pipe.HSet(s.Ctx, getClassInfoKey(clazz.ID), "id", clazz.ID, "name", clazz.Name)

	if _, err := pipe.Exec(s.Ctx); err != nil {
		logrus.Errorf("Error adding class %s: %v", clazz.ID, err)
		return fmt.Errorf("failed to add class to Redis: %w", err)
	}
	logrus.Infof("Added class: %s (%s)", clazz.Name, clazz.ID)
	return nil
}

// GetClassByID retrieves a class by its ID. A missing class yields nil, nil.
func (s *RedisService) GetClassByID(classID string) (*models.Clazz, error) {
	data, err := s.Client.HGetAll(s.Ctx, getClassInfoKey(classID)).Result()
	if err != nil {
		logrus.Errorf("Error getting class %s: %v", classID, err)
		return nil, fmt.Errorf("failed to get class from Redis: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	return &models.Clazz{
		ID:   data["id"],
		Name: data["name"],
	}, nil
}

// GetAllClasses retrieves all classes
func (s *RedisService) GetAllClasses() ([]models.Clazz, error) {
	classIDs, err := s.Client.SMembers(s.Ctx, classesKey).Result()
	if err != nil {
		logrus.Errorf("Error getting all class IDs: %v", err)
		return nil, fmt.Errorf("failed to get class IDs from Redis: %w", err)
	}

	classes := make([]models.Clazz, 0, len(classIDs))
	for _, id := range classIDs {
		clazz, err := s.GetClassByID(id)
		if err != nil {
			// keep fetching the others
			logrus.Warnf("Error fetching details for class %s: %v", id, err)
			continue
		}
		if clazz != nil {
			classes = append(classes, *clazz)
		}
	}
	return classes, nil
}

// ClassExists checks if a class ID exists in the classes set
func (s *RedisService) ClassExists(classID string) (bool, error) {
	exists, err := s.Client.SIsMember(s.Ctx, classesKey, classID).Result()
	if err != nil {
		logrus.Errorf("Error checking existence for class %s: %v", classID, err)
		return false, fmt.Errorf("failed to check class existence: %w", err)
	}
	return exists, nil
}

// --- Student Operations ---

// AddStudent adds a student to its class, creating the class when missing
func (s *RedisService) AddStudent(student models.Student) error {
	if student.ID == "" || student.ClassID == "" {
		return errors.New("student ID and ClassID cannot be empty")
	}

	exists, err := s.ClassExists(student.ClassID)
	if err != nil {
		return err
	}
	if !exists {
		logrus.Warnf("Adding student %s to non-existent class %s. Creating class.", student.ID, student.ClassID)
		if err := s.AddClass(models.Clazz{ID: student.ClassID, Name: "Class " + student.ClassID}); err != nil {
			return fmt.Errorf("student's class %s does not exist and auto-creation failed: %w", student.ClassID, err)
		}
	}

	pipe := s.Client.Pipeline()
	pipe.SAdd(s.Ctx, getClassStudentsKey(student.ClassID), student.ID)
	pipe.HSet(s.Ctx, getStudentInfoKey(student.ID), studentFields(student))

	if _, err := pipe.Exec(s.Ctx); err != nil {
		logrus.Errorf("Error adding student %s to class %s: %v", student.ID, student.ClassID, err)
		return fmt.Errorf("failed to add student to Redis: %w", err)
	}
	return nil
}

// Helper to rebuild a student from its hash fields
func studentFromHash(data map[string]string) models.Student {
	age, err := strconv.Atoi(data["s_age"])
	if err != nil {
		logrus.Warnf("Student %s has non-numeric age '%s': %v", data["s_id"], data["s_age"], err)
	}
	return models.Student{
		ID:      data["s_id"],
		ClassID: data["cl_id"],
		Name:    data["s_name"],
		Sex:     data["s_sex"],
		Age:     age,
		Tel:     data["s_tel"],
	}
}

// GetStudentByID retrieves a student by their ID. A missing student yields nil, nil.
func (s *RedisService) GetStudentByID(studentID string) (*models.Student, error) {
	data, err := s.Client.HGetAll(s.Ctx, getStudentInfoKey(studentID)).Result()
	if err != nil {
		logrus.Errorf("Error getting student %s: %v", studentID, err)
		return nil, fmt.Errorf("failed to get student from Redis: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	student := studentFromHash(data)
	return &student, nil
}

// GetStudentsByClassID retrieves all students for a given class ID
func (s *RedisService) GetStudentsByClassID(classID string) ([]models.Student, error) {
	studentIDs, err := s.Client.SMembers(s.Ctx, getClassStudentsKey(classID)).Result()
	if err != nil {
		logrus.Errorf("Error getting student IDs for class %s: %v", classID, err)
		return nil, fmt.Errorf("failed to get student IDs from Redis for class %s: %w", classID, err)
	}

	students := make([]models.Student, 0, len(studentIDs))
	for _, id := range studentIDs {
		student, err := s.GetStudentByID(id)
		if err != nil {
			logrus.Warnf("Error fetching details for student %s in class %s: %v", id, classID, err)
			continue
		}
		if student != nil {
			students = append(students, *student)
		}
	}
	return students, nil
}

// GetRandomStudent selects a random student from a class. An empty or unknown class yields nil, nil.
func (s *RedisService) GetRandomStudent(classID string) (*models.Student, error) {
	studentID, err := s.Client.SRandMember(s.Ctx, getClassStudentsKey(classID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logrus.Errorf("Error getting random student ID for class %s: %v", classID, err)
		return nil, fmt.Errorf("failed to get random student ID from Redis for class %s: %w", classID, err)
	}
	if studentID == "" {
		return nil, nil
	}

	return s.GetStudentByID(studentID)
}

// --- Score Operations ---

// AddScore stores a student's score for a course
func (s *RedisService) AddScore(score models.Score) error {
	if score.StudentID == "" || score.CourseID == "" {
		return errors.New("score student ID and course ID cannot be empty")
	}

	pipe := s.Client.Pipeline()
	pipe.SAdd(s.Ctx, getStudentScoresKey(score.StudentID), score.CourseID)
	pipe.HSet(s.Ctx, getScoreInfoKey(score.StudentID, score.CourseID), scoreFields(score))

	if _, err := pipe.Exec(s.Ctx); err != nil {
		logrus.Errorf("Error adding score of student %s for course %s: %v", score.StudentID, score.CourseID, err)
		return fmt.Errorf("failed to add score to Redis: %w", err)
	}
	return nil
}

// GetScoresByStudentID retrieves every course score of a student
func (s *RedisService) GetScoresByStudentID(studentID string) ([]models.Score, error) {
	courseIDs, err := s.Client.SMembers(s.Ctx, getStudentScoresKey(studentID)).Result()
	if err != nil {
		logrus.Errorf("Error getting course IDs for student %s: %v", studentID, err)
		return nil, fmt.Errorf("failed to get scores from Redis for student %s: %w", studentID, err)
	}

	scores := make([]models.Score, 0, len(courseIDs))
	for _, courseID := range courseIDs {
		data, err := s.Client.HGetAll(s.Ctx, getScoreInfoKey(studentID, courseID)).Result()
		if err != nil {
			logrus.Warnf("Error fetching score of student %s for course %s: %v", studentID, courseID, err)
			continue
		}
		if len(data) == 0 {
			continue
		}
		value, err := strconv.Atoi(data["score"])
		if err != nil {
			logrus.Warnf("Score of student %s for course %s is non-numeric '%s': %v", studentID, courseID, data["score"], err)
		}
		scores = append(scores, models.Score{
			StudentID: data["s_id"],
			CourseID:  data["c_id"],
			Score:     value,
			Date:      data["date"],
		})
	}
	return scores, nil
}

// --- Bulk Load ---

// SeedDataset writes a whole generated dataset in a single pipeline
func (s *RedisService) SeedDataset(ds *generator.Dataset) error {
	pipe := s.Client.Pipeline()

	pipe.SAdd(s.Ctx, classesKey, ds.Class.ID)
	pipe.HSet(s.Ctx, getClassInfoKey(ds.Class.ID), "id", ds.Class.ID, "name", ds.Class.Name)

	for _, student := range ds.Students {
		pipe.SAdd(s.Ctx, getClassStudentsKey(student.ClassID), student.ID)
		pipe.HSet(s.Ctx, getStudentInfoKey(student.ID), studentFields(student))
	}
	for _, score := range ds.Scores {
		pipe.SAdd(s.Ctx, getStudentScoresKey(score.StudentID), score.CourseID)
		pipe.HSet(s.Ctx, getScoreInfoKey(score.StudentID, score.CourseID), scoreFields(score))
	}

	if _, err := pipe.Exec(s.Ctx); err != nil {
		logrus.Errorf("Error seeding dataset for class %s: %v", ds.Class.ID, err)
		return fmt.Errorf("failed to seed dataset: %w", err)
	}
	logrus.Infof("Seeded class %s with %d students and %d scores", ds.Class.ID, len(ds.Students), len(ds.Scores))
	return nil
}

// --- Excel Import ---

// ImportDatasetFromExcel reads a generated workbook and stores its students and scores.
// Rows missing an identifier or holding a non-numeric age or score are skipped.
// It returns how many of each were stored.
func (s *RedisService) ImportDatasetFromExcel(file io.Reader) (int, int, error) {
	sheets, err := ReadWorkbook(file)
	if err != nil {
		return 0, 0, err
	}

	studentRows, ok := sheets[models.StudentSheet]
	if !ok {
		return 0, 0, fmt.Errorf("excel file has no %q sheet", models.StudentSheet)
	}
	scoreRows := sheets[models.ScoreSheet]

	importedStudents := 0
	for i, row := range studentRows {
		if i == 0 {
			continue // header
		}
		student := models.Student{
			ID:      cell(row, 0),
			ClassID: cell(row, 1),
			Name:    cell(row, 2),
			Sex:     cell(row, 3),
			Tel:     cell(row, 5),
		}
		if student.ID == "" || student.ClassID == "" {
			logrus.Warnf("Skipping student row %d due to missing ID or class (ID: '%s', class: '%s')", i+1, student.ID, student.ClassID)
			continue
		}
		age, err := strconv.Atoi(cell(row, 4))
		if err != nil {
			logrus.Warnf("Skipping student row %d due to non-numeric age '%s'", i+1, cell(row, 4))
			continue
		}
		student.Age = age
		if err := s.AddStudent(student); err != nil {
			logrus.Errorf("Error adding student %s during import: %v", student.ID, err)
			continue
		}
		importedStudents++
	}

	importedScores := 0
	for i, row := range scoreRows {
		if i == 0 {
			continue
		}
		score := models.Score{
			StudentID: cell(row, 0),
			CourseID:  cell(row, 1),
			Date:      cell(row, 3),
		}
		if score.StudentID == "" || score.CourseID == "" {
			logrus.Warnf("Skipping score row %d due to missing student or course ID", i+1)
			continue
		}
		value, err := strconv.Atoi(cell(row, 2))
		if err != nil {
			logrus.Warnf("Skipping score row %d due to non-numeric score '%s'", i+1, cell(row, 2))
			continue
		}
		score.Score = value
		if err := s.AddScore(score); err != nil {
			logrus.Errorf("Error adding score for student %s during import: %v", score.StudentID, err)
			continue
		}
		importedScores++
	}

	logrus.Infof("Imported %d students and %d scores from Excel file", importedStudents, importedScores)
	return importedStudents, importedScores, nil
}

// Helper to read a cell that may be missing from a short row
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// --- Utility ---

// InitializeRedisClient creates a Redis client and checks the connection
func InitializeRedisClient(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("could not connect to Redis at %s: %w", addr, err)
	}

	logrus.Infof("Successfully connected to Redis %s DB %d", addr, db)
	return rdb, nil
}
