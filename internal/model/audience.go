package model

import (
	"slices"
	"strings"
	"time"
)

type AudienceGroup string

const (
	GroupParents        AudienceGroup = "Parents"
	GroupStudents       AudienceGroup = "Students"
	GroupTeachers       AudienceGroup = "Teachers"
	GroupStaff          AudienceGroup = "Staff"
	GroupAdministrators AudienceGroup = "Administrators"
	GroupOthers         AudienceGroup = "Others"
)

var AudienceGroups = []AudienceGroup{
	GroupParents,
	GroupStudents,
	GroupTeachers,
	GroupStaff,
	GroupAdministrators,
	GroupOthers,
}

func (g AudienceGroup) Valid() bool {
	return slices.Contains(AudienceGroups, g)
}

type AudienceSubgroup struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Group AudienceGroup `json:"group"`
}

type Audience struct {
	Groups     []AudienceGroup `json:"groups"`
	Subgroups  []string        `json:"subgroups"`
	IsEveryone bool            `json:"is_everyone"`
}

// HasAnyGroup reports whether the audience includes at least one of groups.
func (a Audience) HasAnyGroup(groups []AudienceGroup) bool {
	for _, g := range groups {
		if slices.Contains(a.Groups, g) {
			return true
		}
	}
	return false
}

// Display renders the audience the way the detail views show it: "Everyone",
// the names of the selected subgroups, or the group list.
// Subgroup names follow catalog order.
func (a Audience) Display(catalog []AudienceSubgroup) string {
	if a.IsEveryone {
		return "Everyone"
	}
	if len(a.Subgroups) > 0 {
		var names []string
		for _, sg := range catalog {
			if slices.Contains(a.Subgroups, sg.ID) {
				names = append(names, sg.Name)
			}
		}
		return strings.Join(names, ", ")
	}
	parts := make([]string, len(a.Groups))
	for i, g := range a.Groups {
		parts[i] = string(g)
	}
	return strings.Join(parts, ", ")
}

// GroupBreakdown is one group of an audience with the names of its selected
// subgroups. An empty Subgroups slice means the whole group.
type GroupBreakdown struct {
	Group     AudienceGroup
	Subgroups []string
}

func (a Audience) Breakdown(catalog []AudienceSubgroup) []GroupBreakdown {
	out := make([]GroupBreakdown, 0, len(a.Groups))
	for _, g := range a.Groups {
		b := GroupBreakdown{Group: g}
		for _, sg := range catalog {
			if sg.Group == g && slices.Contains(a.Subgroups, sg.ID) {
				b.Subgroups = append(b.Subgroups, sg.Name)
			}
		}
		out = append(out, b)
	}
	return out
}

type NoticePeriod string

const (
	NoticeSameDay       NoticePeriod = "same_day"
	NoticeOneDayBefore  NoticePeriod = "1_day_before"
	NoticeTwoDaysBefore NoticePeriod = "2_days_before"
	NoticeThreeDays     NoticePeriod = "3_days_before"
	NoticeOneWeek       NoticePeriod = "1_week_before"
)

var noticeLeadDays = map[NoticePeriod]int{
	NoticeSameDay:       0,
	NoticeOneDayBefore:  1,
	NoticeTwoDaysBefore: 2,
	NoticeThreeDays:     3,
	NoticeOneWeek:       7,
}

func (p NoticePeriod) Valid() bool {
	_, ok := noticeLeadDays[p]
	return ok
}

// LeadDays is how many days before the event the notice is posted.
func (p NoticePeriod) LeadDays() int {
	return noticeLeadDays[p]
}

type NoticeSettings struct {
	AddToNoticeBoard bool            `json:"add_to_notice_board"`
	AudienceGroups   []AudienceGroup `json:"audience_groups"`
	NoticePeriod     NoticePeriod    `json:"notice_period"`
	ExpiryDate       *time.Time      `json:"expiry_date"`
}
