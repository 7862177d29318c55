package dto

import (
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OrganizerID uint64    `json:"organizer_id"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectMemberDTO represents a member of a project
type ProjectMemberDTO struct {
	User        UserDTO   `json:"user"`
	IsActive    bool      `json:"is_active"`
	IsOrganizer bool      `json:"is_organizer"`
	JoinedAt    time.Time `json:"joined_at"`
}

// ProjectDetailDTO represents a project with its member list
type ProjectDetailDTO struct {
	ProjectDTO
	Members []ProjectMemberDTO `json:"members"`
}

// ProjectSummaryDTO represents a generated project summary
type ProjectSummaryDTO struct {
	ID            uint64    `json:"id"`
	ProjectID     uint64    `json:"project_id"`
	GeneratedByID uint64    `json:"generated_by_id"`
	GeneratedAt   time.Time `json:"generated_at"`
	Content       string    `json:"content"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		OrganizerID: project.OrganizerID,
		IsActive:    project.IsActive,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// ToProjectDTOs converts a list of projects
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	dtos := make([]ProjectDTO, len(projects))
	for i, project := range projects {
		dtos[i] = ToProjectDTO(project)
	}
	return dtos
}

// ToProjectMemberDTO converts a membership row to DTO
func ToProjectMemberDTO(project models.Project, member models.ProjectMember) ProjectMemberDTO {
	return ProjectMemberDTO{
		User:        ToUserDTO(member.User),
		IsActive:    member.IsActive,
		IsOrganizer: member.UserID == project.OrganizerID,
		JoinedAt:    member.JoinedAt,
	}
}

// ToProjectMemberDTOs converts the membership rows of project
func ToProjectMemberDTOs(project models.Project, members []models.ProjectMember) []ProjectMemberDTO {
	dtos := make([]ProjectMemberDTO, len(members))
	for i, member := range members {
		dtos[i] = ToProjectMemberDTO(project, member)
	}
	return dtos
}

// ToProjectDetailDTO converts a project with members to detailed DTO
func ToProjectDetailDTO(project models.Project, members []models.ProjectMember) ProjectDetailDTO {
	return ProjectDetailDTO{
		ProjectDTO: ToProjectDTO(project),
		Members:    ToProjectMemberDTOs(project, members),
	}
}

// ToProjectSummaryDTO converts a ProjectSummary model to DTO
func ToProjectSummaryDTO(summary models.ProjectSummary) ProjectSummaryDTO {
	return ProjectSummaryDTO{
		ID:            summary.ID,
		ProjectID:     summary.ProjectID,
		GeneratedByID: summary.GeneratedByID,
		GeneratedAt:   summary.GeneratedAt,
		Content:       summary.Content,
	}
}

// ToUserDTOs converts a list of users without contact details
func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, user := range users {
		dtos[i] = ToPublicUserDTO(user)
	}
	return dtos
}
