package types

import "fmt"

type Role string

const (
	Student    Role = "student"
	Supervisor Role = "supervisor"
)

func (r Role) ToString() string {
	return string(r)
}

func RoleFromString(s string) (Role, error) {
	switch s {
	case Student.ToString():
		return Student, nil
	case Supervisor.ToString():
		return Supervisor, nil
	default:
		return "", fmt.Errorf("unknown participant role: %s", s)
	}
}
