package engine

import (
	"fmt"
	"os"
	"os/exec"
)

// doneEnv describes a finished torrent to the DoneCmd program.
func (torrent *Torrent) doneEnv(downloadDir string) []string {
	dir := downloadDir
	if torrent.DownloadLocation != "" {
		dir = torrent.DownloadLocation
	}
	return append(os.Environ(),
		fmt.Sprintf("AT_DIR=%s", dir),
		fmt.Sprintf("AT_PATH=%s", torrent.Name),
		fmt.Sprintf("AT_SIZE=%d", torrent.Size),
		fmt.Sprintf("AT_HASH=%s", torrent.InfoHash),
		"AT_TYPE=torrent",
	)
}

func callDoneCmd(name string, env []string) error {
	cmd := exec.Command(name)
	cmd.Env = env
	log.Printf("[DoneCmd] running %s", name)
	out, err := cmd.CombinedOutput()
	if err != nil {
		log.Println("[DoneCmd] Err:", err, string(out))
		return err
	}
	log.Println("[DoneCmd] Exit:", cmd.ProcessState.ExitCode(), "Output:", string(out))
	return nil
}
