package types

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AUTH_TYPE_PASSWORD = "password"
	AUTH_TYPE_GOOGLE   = "google"

	ROLE_USER  = "user"
	ROLE_ADMIN = "admin"
)

type User struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Account         Account          `bson:"account" json:"account"`
	Profile         Profile          `bson:"profile" json:"profile"`
	Role            string           `bson:"role" json:"role"`
	EnrolledCourses []EnrolledCourse `bson:"enrolledCourses" json:"enrolledCourses"`
	Timestamps      Timestamps       `bson:"timestamps" json:"timestamps"`
}

type Account struct {
	Email    string `bson:"email" json:"email"`
	GoogleID string `bson:"googleId,omitempty" json:"googleId,omitempty"`
	// Password holds the bcrypt hash; empty for externally authenticated accounts.
	Password      string `bson:"password,omitempty" json:"-"`
	AuthType      string `bson:"authType" json:"authType"`
	EmailVerified bool   `bson:"emailVerified" json:"emailVerified"`

	LoginAttempts int   `bson:"loginAttempts" json:"-"`
	LockUntil     int64 `bson:"lockUntil,omitempty" json:"-"`

	ResetPasswordToken   string `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpires int64  `bson:"resetPasswordExpires,omitempty" json:"-"`
}

type Profile struct {
	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
	Avatar    string `bson:"avatar,omitempty" json:"avatar,omitempty"`
}

type EnrolledCourse struct {
	CourseID         primitive.ObjectID   `bson:"courseId" json:"courseId"`
	Progress         float64              `bson:"progress" json:"progress"`
	StartedAt        int64                `bson:"startedAt" json:"startedAt"`
	CompletedLessons []primitive.ObjectID `bson:"completedLessons" json:"completedLessons"`
	CurrentLesson    primitive.ObjectID   `bson:"currentLesson,omitempty" json:"currentLesson,omitempty"`
	TotalScore       int                  `bson:"totalScore" json:"totalScore"`
}

type Timestamps struct {
	CreatedAt          int64 `bson:"createdAt" json:"createdAt"`
	UpdatedAt          int64 `bson:"updatedAt" json:"updatedAt"`
	LastLogin          int64 `bson:"lastLogin" json:"lastLogin"`
	LastPasswordChange int64 `bson:"lastPasswordChange" json:"lastPasswordChange"`
}

// IsLocked reports whether the account is currently inside a lockout window.
func (u User) IsLocked() bool {
	return u.Account.LockUntil > 0 && u.Account.LockUntil > time.Now().Unix()
}

func (u User) FindEnrolledCourse(courseID string) (EnrolledCourse, bool) {
	for _, ec := range u.EnrolledCourses {
		if ec.CourseID.Hex() == courseID {
			return ec, true
		}
	}
	return EnrolledCourse{}, false
}

// EnrollInCourse appends a new enrollment; enrolling twice is an error.
func (u *User) EnrollInCourse(courseID primitive.ObjectID) error {
	for _, ec := range u.EnrolledCourses {
		if ec.CourseID == courseID {
			return errors.New("already enrolled in course")
		}
	}
	u.EnrolledCourses = append(u.EnrolledCourses, EnrolledCourse{
		CourseID:  courseID,
		StartedAt: time.Now().Unix(),
	})
	return nil
}

// MarkLessonCompleted records lesson completion and updates course progress.
// totalLessons is the current lesson count of the course, used to derive the
// progress percentage.
func (u *User) MarkLessonCompleted(courseID primitive.ObjectID, lessonID primitive.ObjectID, totalLessons int) error {
	for i, ec := range u.EnrolledCourses {
		if ec.CourseID != courseID {
			continue
		}
		for _, done := range ec.CompletedLessons {
			if done == lessonID {
				return nil
			}
		}
		u.EnrolledCourses[i].CompletedLessons = append(ec.CompletedLessons, lessonID)
		u.EnrolledCourses[i].CurrentLesson = lessonID
		if totalLessons > 0 {
			u.EnrolledCourses[i].Progress = float64(len(u.EnrolledCourses[i].CompletedLessons)) / float64(totalLessons) * 100
		}
		return nil
	}
	return errors.New("not enrolled in course")
}

// AddCourseScore accumulates quiz scores on the enrollment record.
func (u *User) AddCourseScore(courseID primitive.ObjectID, points int) error {
	for i, ec := range u.EnrolledCourses {
		if ec.CourseID == courseID {
			u.EnrolledCourses[i].TotalScore += points
			return nil
		}
	}
	return errors.New("not enrolled in course")
}
