package search

import (
	"strconv"

	"github.com/lectern-ai/lectern/internal/vectorstore"
)

// BuildFilter turns an optional resolved course title and an optional
// lesson number into a metadata predicate for the content collection.
// Both present means a conjunction on both keys; neither means nil
// (unfiltered search).
func BuildFilter(courseTitle string, lesson *int) map[string]string {
	if courseTitle == "" && lesson == nil {
		return nil
	}
	where := make(map[string]string, 2)
	if courseTitle != "" {
		where[vectorstore.MetaCourseTitle] = courseTitle
	}
	if lesson != nil {
		where[vectorstore.MetaLessonNumber] = strconv.Itoa(*lesson)
	}
	return where
}
