// Package client is the HTTP client the CLI uses to talk to a kubesim
// API server. It owns one session at a time; the session ID is kept in a
// state file under the user's home directory so consecutive CLI
// invocations address the same simulated cluster.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"kubesim/commands"
	"kubesim/models"
	"kubesim/scenario"
)

type Config struct {
	Host string
	Port string
}

type Client struct {
	baseURL   string
	sessionID string
	stateFile string
}

// TickResult is the server's response to ticks and commands.
type TickResult struct {
	Tick   int                   `json:"tick"`
	Events []models.Event        `json:"events"`
	Goals  []scenario.GoalStatus `json:"goals"`
	Done   bool                  `json:"done"`
}

type GoalReport struct {
	Goals []scenario.GoalStatus `json:"goals"`
	Done  bool                  `json:"done"`
}

func New(config Config) *Client {
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.Port == "" {
		config.Port = "8080"
	}
	c := &Client{
		baseURL:   fmt.Sprintf("http://%s:%s", config.Host, config.Port),
		stateFile: sessionStatePath(),
	}
	c.sessionID = c.loadSession()
	return c
}

func sessionStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kubesim-session"
	}
	return filepath.Join(home, ".kubesim-session")
}

func (c *Client) loadSession() string {
	data, err := os.ReadFile(c.stateFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (c *Client) saveSession(id string) {
	c.sessionID = id
	_ = os.WriteFile(c.stateFile, []byte(id), 0o644)
}

// StartSession creates a new session for the scenario and remembers it.
func (c *Client) StartSession(scenarioName string) (string, string, error) {
	var resp struct {
		ID          string `json:"id"`
		Scenario    string `json:"scenario"`
		Description string `json:"description"`
	}
	err := c.post("/api/v1/sessions", map[string]string{"scenario": scenarioName}, http.StatusCreated, &resp)
	if err != nil {
		return "", "", err
	}
	c.saveSession(resp.ID)
	return resp.ID, resp.Description, nil
}

// EndSession deletes the current session on the server and forgets it.
func (c *Client) EndSession() error {
	id, err := c.session()
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/api/v1/sessions/"+id, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return responseError("end session", resp)
	}
	c.saveSession("")
	return nil
}

func (c *Client) session() (string, error) {
	if c.sessionID == "" {
		return "", fmt.Errorf("no active session; run 'kubesim session start' first")
	}
	return c.sessionID, nil
}

// Apply sends one command to the current session.
func (c *Client) Apply(cmd commands.Command) (*TickResult, error) {
	id, err := c.session()
	if err != nil {
		return nil, err
	}
	var out TickResult
	if err := c.post("/api/v1/sessions/"+id+"/commands", cmd, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Tick advances the session by count ticks.
func (c *Client) Tick(count int) (*TickResult, error) {
	id, err := c.session()
	if err != nil {
		return nil, err
	}
	var out TickResult
	path := fmt.Sprintf("/api/v1/sessions/%s/tick?count=%d", id, count)
	if err := c.post(path, nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListPods(namespace string) ([]*models.Pod, error) {
	var pods []*models.Pod
	return pods, c.getSessionResource("pods", namespace, &pods)
}

func (c *Client) ListNodes() ([]*models.Node, error) {
	var nodes []*models.Node
	return nodes, c.getSessionResource("nodes", "", &nodes)
}

func (c *Client) ListDeployments(namespace string) ([]*models.Deployment, error) {
	var ds []*models.Deployment
	return ds, c.getSessionResource("deployments", namespace, &ds)
}

func (c *Client) ListJobs(namespace string) ([]*models.Job, error) {
	var jobs []*models.Job
	return jobs, c.getSessionResource("jobs", namespace, &jobs)
}

func (c *Client) ListEvents() ([]models.Event, error) {
	var events []models.Event
	return events, c.getSessionResource("events", "", &events)
}

func (c *Client) Goals() (*GoalReport, error) {
	var report GoalReport
	if err := c.getSessionResource("goals", "", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// GetPod fetches the full pod object, logs included.
func (c *Client) GetPod(namespace, name string) (*models.Pod, error) {
	if namespace == "" {
		namespace = "default"
	}
	pods, err := c.ListPods(namespace)
	if err != nil {
		return nil, err
	}
	for _, p := range pods {
		if p.Metadata.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("pod %s/%s not found", namespace, name)
}

func (c *Client) getSessionResource(resource, namespace string, out interface{}) error {
	id, err := c.session()
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/api/v1/sessions/%s/%s", c.baseURL, id, resource)
	if namespace != "" {
		url += "?namespace=" + namespace
	}
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return responseError("list "+resource, resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) post(path string, body interface{}, wantStatus int, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(c.baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		return responseError(strings.TrimPrefix(path, "/api/v1/"), resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func responseError(action string, resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("%s: %s", action, body.Error)
	}
	return fmt.Errorf("%s: %s", action, resp.Status)
}
